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

package ecdh

import (
	"bytes"
	"testing"
)

// TestNewKeypair checks the raw key sizes and hex forms.
func TestNewKeypair(t *testing.T) {
	kp, err := NewKeypair()
	if err != nil {
		t.Fatal("NewKeypair failed:", err)
	}
	if len(kp.Private()) != PrivateKeySize {
		t.Fatalf("private key size: %d", len(kp.Private()))
	}
	if len(kp.Public()) != PublicKeySize {
		t.Fatalf("public key size: %d", len(kp.Public()))
	}
	if len(kp.PrivateHex()) != PrivateKeySize*2 {
		t.Fatalf("private key hex length: %d", len(kp.PrivateHex()))
	}
	if len(kp.PublicHex()) != PublicKeySize*2 {
		t.Fatalf("public key hex length: %d", len(kp.PublicHex()))
	}
}

// TestKeypairFromPrivateKey checks the private-to-public round trip.
func TestKeypairFromPrivateKey(t *testing.T) {
	kp, err := NewKeypair()
	if err != nil {
		t.Fatal("NewKeypair failed:", err)
	}

	restored, err := KeypairFromPrivateKey(kp.Private())
	if err != nil {
		t.Fatal("KeypairFromPrivateKey failed:", err)
	}
	if !bytes.Equal(restored.Public(), kp.Public()) {
		t.Fatal("restored public key mismatch")
	}

	if _, err = KeypairFromPrivateKey(kp.Private()[:16]); err == nil {
		t.Fatal("KeypairFromPrivateKey accepted a short key")
	}
}

// TestSharedSecret checks that key agreement commutes.
func TestSharedSecret(t *testing.T) {
	alice, err := NewKeypair()
	if err != nil {
		t.Fatal("NewKeypair failed:", err)
	}
	bob, err := NewKeypair()
	if err != nil {
		t.Fatal("NewKeypair failed:", err)
	}

	ab, err := SharedSecret(bob.Public(), alice.Private())
	if err != nil {
		t.Fatal("SharedSecret(bob, alice) failed:", err)
	}
	ba, err := SharedSecret(alice.Public(), bob.Private())
	if err != nil {
		t.Fatal("SharedSecret(alice, bob) failed:", err)
	}

	if len(ab) != SecretSize {
		t.Fatalf("secret size: %d", len(ab))
	}
	if !bytes.Equal(ab, ba) {
		t.Fatalf("secrets disagree: %x != %x", ab, ba)
	}
}

// TestSharedSecretErrors checks key material validation.
func TestSharedSecretErrors(t *testing.T) {
	kp, err := NewKeypair()
	if err != nil {
		t.Fatal("NewKeypair failed:", err)
	}

	if _, err = SharedSecret(kp.Public()[:32], kp.Private()); err == nil {
		t.Fatal("SharedSecret accepted a short public key")
	}
	if _, err = SharedSecret(kp.Public(), kp.Private()[:16]); err == nil {
		t.Fatal("SharedSecret accepted a short private key")
	}

	// A point not on the curve must be rejected.
	offCurve := make([]byte, PublicKeySize)
	for i := range offCurve {
		offCurve[i] = 0x01
	}
	if _, err = SharedSecret(offCurve, kp.Private()); err == nil {
		t.Fatal("SharedSecret accepted an off-curve point")
	}
}

// TestParsePrivateKeyHex checks hex decoding and length validation.
func TestParsePrivateKeyHex(t *testing.T) {
	kp, err := NewKeypair()
	if err != nil {
		t.Fatal("NewKeypair failed:", err)
	}

	raw, err := ParsePrivateKeyHex(kp.PrivateHex())
	if err != nil {
		t.Fatal("ParsePrivateKeyHex failed:", err)
	}
	if !bytes.Equal(raw, kp.Private()) {
		t.Fatal("decoded key mismatch")
	}

	if _, err = ParsePrivateKeyHex("not hex"); err == nil {
		t.Fatal("ParsePrivateKeyHex accepted garbage")
	}
	if _, err = ParsePrivateKeyHex("abcd"); err == nil {
		t.Fatal("ParsePrivateKeyHex accepted a short key")
	}
}

/* vim :set ts=4 sw=4 sts=4 noet : */
