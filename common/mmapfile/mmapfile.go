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

// Package mmapfile provides an immutable byte view of a whole file.  On
// unix platforms the view is a read-only memory mapping, so slicing an
// archive stays zero-copy; elsewhere the file is read into memory, which
// satisfies the same contract.
package mmapfile

import (
	"fmt"
	"os"
)

// File is a read-only byte view of a file.  The view must not be written
// to, and must not be used after Close.
type File struct {
	data   []byte
	mapped bool
}

// Open opens path and maps its entire contents.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if !fi.Mode().IsRegular() {
		return nil, fmt.Errorf("mmapfile: not a regular file: %s", path)
	}
	size := fi.Size()
	if size == 0 {
		// Zero length mappings are invalid; an empty view needs no map.
		return &File{}, nil
	}
	if size != int64(int(size)) {
		return nil, fmt.Errorf("mmapfile: file too large: %d bytes", size)
	}

	return openFile(f, int(size))
}

// Bytes returns the file contents.  The slice is valid until Close.
func (f *File) Bytes() []byte {
	return f.data
}

// Len returns the file length in bytes.
func (f *File) Len() int {
	return len(f.data)
}

/* vim :set ts=4 sw=4 sts=4 noet : */
