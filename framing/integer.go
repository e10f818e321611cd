/*
 * Copyright (c) 2022, 0x1306a94 <0x1306a94 at gmail dot com>
 * All rights reserved.
 *
 * Redistribution and use in source and binary forms, with or without
 * modification, are permitted provided that the following conditions are met:
 *
 *  * Redistributions of source code must retain the above copyright notice,
 *    this list of conditions and the following disclaimer.
 *
 *  * Redistributions in binary form must reproduce the above copyright notice,
 *    this list of conditions and the following disclaimer in the documentation
 *    and/or other materials provided with the distribution.
 *
 * THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
 * AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
 * IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
 * ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
 * LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
 * CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
 * SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
 * INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
 * CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
 * ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
 * POSSIBILITY OF SUCH DAMAGE.
 */

package framing

import (
	"encoding/binary"
	"errors"
)

// The frame format is little endian throughout.  These helpers exist for
// readers that walk untrusted payload bytes (the chunked zlib variant)
// where the buffer may end mid-integer.

// ErrShortInteger is the error returned when a buffer is shorter than the
// width of the integer being read from its head.
var ErrShortInteger = errors.New("framing: buffer shorter than integer width")

// ReadUint16 reads a little-endian uint16 from the head of b.
func ReadUint16(b []byte) (uint16, error) {
	if len(b) < 2 {
		return 0, ErrShortInteger
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadInt16 reads a little-endian int16 from the head of b.
func ReadInt16(b []byte) (int16, error) {
	v, err := ReadUint16(b)
	return int16(v), err
}

// ReadUint32 reads a little-endian uint32 from the head of b.
func ReadUint32(b []byte) (uint32, error) {
	if len(b) < 4 {
		return 0, ErrShortInteger
	}
	return binary.LittleEndian.Uint32(b), nil
}

/* vim :set ts=4 sw=4 sts=4 noet : */
