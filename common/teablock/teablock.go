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

//
// Package teablock implements the TEA block transform as used by the mars
// xlog payload encryption.
//
// xlog runs TEA with a 32 round schedule over 64 bit blocks.  The block
// halves are read from the payload as little-endian uint32s, but the
// transformed halves are written back big endian; the asymmetry is part of
// the on-disk format and both directions here preserve it.  The 128 bit
// key is the leading 16 bytes of the ECDH shared secret, taken as four
// little-endian uint32s.
//
package teablock

import (
	"crypto/cipher"
	"fmt"

	"golang.org/x/crypto/tea"
)

const (
	// BlockSize is the TEA block size in bytes.
	BlockSize = 8

	// KeySize is the number of key bytes consumed by NewCipher.
	KeySize = 16

	rounds = 32
)

// Cipher transforms 8 byte blocks in the xlog byte order convention.
type Cipher struct {
	block cipher.Block
}

// NewCipher creates a Cipher from key material.  Only the leading KeySize
// bytes are used; extra bytes (the tail of an ECDH shared secret) are
// ignored.
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) < KeySize {
		return nil, fmt.Errorf("teablock: short key: %d bytes", len(key))
	}

	// The underlying cipher loads its key words big endian, xlog little
	// endian: reverse each 4 byte group.
	var k [KeySize]byte
	for i := 0; i < KeySize; i += 4 {
		k[i], k[i+1], k[i+2], k[i+3] = key[i+3], key[i+2], key[i+1], key[i]
	}

	block, err := tea.NewCipherWithRounds(k[:], rounds)
	if err != nil {
		return nil, err
	}

	return &Cipher{block: block}, nil
}

// swapWords reverses each 4 byte half of an 8 byte block, converting
// between the little-endian loads of the xlog convention and the
// big-endian ones of the underlying cipher.
func swapWords(b []byte) {
	b[0], b[1], b[2], b[3] = b[3], b[2], b[1], b[0]
	b[4], b[5], b[6], b[7] = b[7], b[6], b[5], b[4]
}

// DecryptBlocks decrypts p in place, 8 bytes at a time.  A trailing
// partial block is left untouched, matching the encryptor, which never
// ciphers a partial block.
func (c *Cipher) DecryptBlocks(p []byte) {
	for len(p) >= BlockSize {
		b := p[:BlockSize]
		swapWords(b)
		c.block.Decrypt(b, b)
		p = p[BlockSize:]
	}
}

// EncryptBlocks encrypts p in place, 8 bytes at a time, leaving a trailing
// partial block untouched.  It is the exact inverse of DecryptBlocks.
func (c *Cipher) EncryptBlocks(p []byte) {
	for len(p) >= BlockSize {
		b := p[:BlockSize]
		c.block.Encrypt(b, b)
		swapWords(b)
		p = p[BlockSize:]
	}
}

/* vim :set ts=4 sw=4 sts=4 noet : */
