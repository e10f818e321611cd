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

package mmapfile

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestOpen(t *testing.T) {
	content := []byte("mapped file contents")
	path := filepath.Join(t.TempDir(), "sample.bin")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal("WriteFile failed:", err)
	}

	f, err := Open(path)
	if err != nil {
		t.Fatal("Open failed:", err)
	}
	defer f.Close()

	if f.Len() != len(content) {
		t.Fatalf("Len: %d", f.Len())
	}
	if !bytes.Equal(f.Bytes(), content) {
		t.Fatalf("Bytes: %q", f.Bytes())
	}

	if err = f.Close(); err != nil {
		t.Fatal("Close failed:", err)
	}
	if f.Bytes() != nil {
		t.Fatal("Bytes not nil after Close")
	}
}

func TestOpenEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.bin")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal("WriteFile failed:", err)
	}

	f, err := Open(path)
	if err != nil {
		t.Fatal("Open failed:", err)
	}
	if f.Len() != 0 {
		t.Fatalf("Len: %d", f.Len())
	}
	if err = f.Close(); err != nil {
		t.Fatal("Close failed:", err)
	}
}

func TestOpenErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Open(filepath.Join(dir, "missing.bin")); err == nil {
		t.Fatal("Open succeeded on a missing file")
	}
	if _, err := Open(dir); err == nil {
		t.Fatal("Open succeeded on a directory")
	}
}

/* vim :set ts=4 sw=4 sts=4 noet : */
