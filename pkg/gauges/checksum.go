// SPDX-License-Identifier: MIT

package gauges

// CRC16CCITT computes the CRC-16/CCITT-FALSE checksum for the given data
// (polynomial 0x1021, initial value 0xFFFF, MSB first, no final XOR).
// Every binary-family frame carries this CRC over all bytes except the
// two CRC bytes themselves.
func CRC16CCITT(data []byte) uint16 {
	crc := uint16(crcInitial)
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = (crc << 1) ^ crcPolynomial
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// AdditiveChecksum sums the given bytes modulo 256. Used by the
// capacitance gauge family.
func AdditiveChecksum(data []byte) uint8 {
	var sum uint8
	for _, b := range data {
		sum += b
	}
	return sum
}
