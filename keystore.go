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

package xlog

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/0x1306a94/xlog-decode/common/ecdh"
)

// The key store is a small JSON file holding one secp256k1 pair in hex,
// the same representation the CLI prints and accepts.

type jsonKeyStore struct {
	PrivateKey string `json:"private-key"`
	PublicKey  string `json:"public-key"`
}

// WriteKeyStore saves kp to path, readable only by the owner.
func WriteKeyStore(path string, kp *ecdh.Keypair) error {
	js := jsonKeyStore{
		PrivateKey: kp.PrivateHex(),
		PublicKey:  kp.PublicHex(),
	}
	encoded, err := json.Marshal(&js)
	if err != nil {
		return err
	}
	return os.WriteFile(path, encoded, 0600)
}

// LoadKeyStore reads the key store at path and returns the hex private
// key.  When the file also carries a public key, the pair is checked for
// consistency.
func LoadKeyStore(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	var js jsonKeyStore
	if err = json.Unmarshal(raw, &js); err != nil {
		return "", err
	}
	rawPriv, err := ecdh.ParsePrivateKeyHex(js.PrivateKey)
	if err != nil {
		return "", errors.Wrap(err, "xlog: key store private key")
	}
	if js.PublicKey != "" {
		kp, err := ecdh.KeypairFromPrivateKey(rawPriv)
		if err != nil {
			return "", err
		}
		if !strings.EqualFold(js.PublicKey, kp.PublicHex()) {
			return "", errors.New("xlog: key store public key does not match private key")
		}
	}

	return js.PrivateKey, nil
}

/* vim :set ts=4 sw=4 sts=4 noet : */
