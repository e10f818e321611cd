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
// Package ecdh implements the secp256k1 Diffie-Hellman key agreement used
// to derive xlog payload keys, along with key-pair generation for the
// logging side.
//
// Keys travel in the micro-uECC raw form: a public key is the 64 byte
// X || Y affine point with no prefix byte, a private key is a 32 byte
// scalar, and the shared secret is the 32 byte big-endian X coordinate of
// the scalar product.
//
package ecdh

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
)

const (
	// PrivateKeySize is the size of a raw private key.
	PrivateKeySize = 32

	// PublicKeySize is the size of a raw (prefix-less, uncompressed)
	// public key.
	PublicKeySize = 64

	// SecretSize is the size of a derived shared secret.
	SecretSize = 32

	// uncompressedPrefix is the SEC1 point prefix the raw form omits.
	uncompressedPrefix = 0x04
)

// InvalidKeyLengthError is the error returned when raw key material has
// the wrong size.
type InvalidKeyLengthError int

func (e InvalidKeyLengthError) Error() string {
	return fmt.Sprintf("ecdh: invalid key length: %d", int(e))
}

// SharedSecret derives the 32 byte shared secret from a raw public key and
// a raw private key.  It fails if the public key does not name a point on
// the curve.
func SharedSecret(rawPub, rawPriv []byte) ([]byte, error) {
	if len(rawPub) != PublicKeySize {
		return nil, InvalidKeyLengthError(len(rawPub))
	}
	if len(rawPriv) != PrivateKeySize {
		return nil, InvalidKeyLengthError(len(rawPriv))
	}

	sec1 := make([]byte, 0, PublicKeySize+1)
	sec1 = append(sec1, uncompressedPrefix)
	sec1 = append(sec1, rawPub...)
	pub, err := btcec.ParsePubKey(sec1)
	if err != nil {
		return nil, err
	}
	priv, _ := btcec.PrivKeyFromBytes(rawPriv)

	return btcec.GenerateSharedSecret(priv, pub), nil
}

// Keypair is a secp256k1 key pair.
type Keypair struct {
	priv *btcec.PrivateKey
}

// NewKeypair generates a new random Keypair.
func NewKeypair() (*Keypair, error) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, err
	}
	return &Keypair{priv: priv}, nil
}

// KeypairFromPrivateKey reconstructs a Keypair from a raw private key.
func KeypairFromPrivateKey(rawPriv []byte) (*Keypair, error) {
	if len(rawPriv) != PrivateKeySize {
		return nil, InvalidKeyLengthError(len(rawPriv))
	}
	priv, _ := btcec.PrivKeyFromBytes(rawPriv)
	return &Keypair{priv: priv}, nil
}

// Private returns the raw private key.
func (kp *Keypair) Private() []byte {
	return kp.priv.Serialize()
}

// Public returns the raw public key.
func (kp *Keypair) Public() []byte {
	return kp.priv.PubKey().SerializeUncompressed()[1:]
}

// PrivateHex returns the lowercase hex form of the private key, the form
// the decoder CLI accepts.
func (kp *Keypair) PrivateHex() string {
	return hex.EncodeToString(kp.Private())
}

// PublicHex returns the lowercase hex form of the raw public key.
func (kp *Keypair) PublicHex() string {
	return hex.EncodeToString(kp.Public())
}

// ParsePrivateKeyHex decodes a hex private key and checks its length.
func ParsePrivateKeyHex(s string) ([]byte, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(raw) != PrivateKeySize {
		return nil, InvalidKeyLengthError(len(raw))
	}
	return raw, nil
}

/* vim :set ts=4 sw=4 sts=4 noet : */
