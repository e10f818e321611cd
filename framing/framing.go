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
// Package framing implements the mars xlog on-disk record framing.
//
// An archive is an append-only concatenation of frames.  The frame format
// is:
//    uint8_t  magic             Frame variant selector.
//    int16_t  seq               Record sequence number (little endian).
//    uint8_t  begin_hour
//    uint8_t  end_hour
//    uint32_t length            Payload length (little endian).
//    uint8_t[keyLen] key        4 bytes (legacy variants) or the writer's
//                               raw 64 byte secp256k1 public key.
//    uint8_t[length] payload
//    uint8_t  end               Terminator, always 0x00.
//
// Archives carry no checksum; frame integrity is inferred structurally from
// the magic byte, the declared length and the terminator.  An archive may
// begin with junk and may contain corrupted runs between valid frames, so
// consumers locate frames with FindStart/GoodAt instead of trusting the
// current offset.
//
package framing

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Frame variant magic bytes.  The SyncZlib* aliases are the names the
// upstream logger uses for the same values on its synchronous flush path.
const (
	End byte = 0x00

	NoCompressStart        byte = 0x03
	CompressStart          byte = 0x04
	CompressStart1         byte = 0x05
	NoCompressStart1       byte = 0x06
	CompressStart2         byte = 0x07
	NoCompressNoCryptStart byte = 0x08
	CompressNoCryptStart   byte = 0x09
	SyncZstdStart          byte = 0x0a
	SyncNoCryptZstdStart   byte = 0x0b
	AsyncZstdStart         byte = 0x0c
	AsyncNoCryptZstdStart  byte = 0x0d

	SyncZlibStart        = NoCompressStart1
	SyncNoCryptZlibStart = NoCompressNoCryptStart
)

const (
	// headerBaseLength is the fixed portion of the frame header: magic,
	// seq, begin_hour, end_hour and length.
	headerBaseLength = 1 + 2 + 1 + 1 + 4

	legacyKeyLength = 4

	// PublicKeyLength is the size of the key field in the modern frame
	// variants: a raw (uncompressed, prefix-less) secp256k1 point.
	PublicKeyLength = 64
)

// Compression selects the codec a frame payload was written with.
type Compression int

const (
	CompressNone Compression = iota
	CompressZlib
	CompressZlibChunked
	CompressZstd
)

// Crypto selects the encryption scheme of a frame variant.
type Crypto int

const (
	CryptoNone Crypto = iota
	CryptoLegacy
	CryptoECDH
)

// Attributes describe a frame variant: how the payload is compressed and
// encrypted, and how wide the key field is.
type Attributes struct {
	Compression Compression
	Crypto      Crypto
	KeyLen      int
}

var magicTable = [256]*Attributes{
	NoCompressStart:        {CompressNone, CryptoLegacy, legacyKeyLength},
	CompressStart:          {CompressZlib, CryptoLegacy, legacyKeyLength},
	CompressStart1:         {CompressZlibChunked, CryptoLegacy, legacyKeyLength},
	NoCompressStart1:       {CompressNone, CryptoECDH, PublicKeyLength},
	CompressStart2:         {CompressZlib, CryptoECDH, PublicKeyLength},
	NoCompressNoCryptStart: {CompressNone, CryptoNone, PublicKeyLength},
	CompressNoCryptStart:   {CompressZlib, CryptoNone, PublicKeyLength},
	SyncZstdStart:          {CompressZstd, CryptoECDH, PublicKeyLength},
	SyncNoCryptZstdStart:   {CompressZstd, CryptoNone, PublicKeyLength},
	AsyncZstdStart:         {CompressZstd, CryptoECDH, PublicKeyLength},
	AsyncNoCryptZstdStart:  {CompressZstd, CryptoNone, PublicKeyLength},
}

// LookupMagic returns the attributes of a frame magic.  The terminator
// (End) is not a frame magic.
func LookupMagic(m byte) (Attributes, bool) {
	attr := magicTable[m]
	if attr == nil {
		return Attributes{}, false
	}
	return *attr, true
}

// ErrTruncated is the error returned when a frame header or payload extends
// past the end of the buffer.
var ErrTruncated = errors.New("framing: truncated frame")

// UnknownMagicError is the error returned when the leading byte of a
// candidate frame is not a recognized magic.
type UnknownMagicError byte

func (e UnknownMagicError) Error() string {
	return fmt.Sprintf("framing: unknown magic: %#02x", byte(e))
}

// Frame is a read-only view of a single record inside an archive buffer.
// NewFrame only guarantees that the fixed header is addressable;
// WellFormed additionally checks the payload bounds and the terminator.
type Frame struct {
	// Magic is the frame's leading byte, Attr its variant attributes.
	Magic byte
	Attr  Attributes

	buf []byte
	off int
}

// NewFrame opens a view of the frame beginning at off.
func NewFrame(buf []byte, off int) (Frame, error) {
	if off >= len(buf) {
		return Frame{}, ErrTruncated
	}
	m := buf[off]
	attr, ok := LookupMagic(m)
	if !ok {
		return Frame{}, UnknownMagicError(m)
	}
	if off+headerBaseLength+attr.KeyLen > len(buf) {
		return Frame{}, ErrTruncated
	}
	return Frame{Magic: m, Attr: attr, buf: buf, off: off}, nil
}

func (f Frame) headerLen() int {
	return headerBaseLength + f.Attr.KeyLen
}

// Offset returns the position of the frame's magic byte within the buffer.
func (f Frame) Offset() int {
	return f.off
}

// Seq returns the record sequence number.
func (f Frame) Seq() int16 {
	return int16(binary.LittleEndian.Uint16(f.buf[f.off+1:]))
}

// BeginHour returns the hour the record span starts at.
func (f Frame) BeginHour() byte {
	return f.buf[f.off+3]
}

// EndHour returns the hour the record span ends at.
func (f Frame) EndHour() byte {
	return f.buf[f.off+4]
}

// PayloadLen returns the declared payload length.
func (f Frame) PayloadLen() int {
	return int(binary.LittleEndian.Uint32(f.buf[f.off+5:]))
}

// Key returns the frame's key field.  For the modern variants this is the
// writer's ephemeral public key.
func (f Frame) Key() []byte {
	start := f.off + headerBaseLength
	return f.buf[start : start+f.Attr.KeyLen]
}

// Payload returns the raw (still compressed/encrypted) payload bytes.  It
// must only be called on a well-formed frame.
func (f Frame) Payload() []byte {
	start := f.off + f.headerLen()
	return f.buf[start : start+f.PayloadLen()]
}

// Size returns the total on-disk size of the frame, terminator included.
func (f Frame) Size() int {
	return f.headerLen() + f.PayloadLen() + 1
}

// End returns the offset just past the frame.
func (f Frame) End() int {
	return f.off + f.Size()
}

// WellFormed reports whether the declared payload fits inside the buffer
// and the trailing terminator byte is present.
func (f Frame) WellFormed() bool {
	end := f.off + f.headerLen() + f.PayloadLen()
	if end+1 > len(f.buf) {
		return false
	}
	return f.buf[end] == End
}

// TruncatedAt reports whether off looks like a frame cut short by the end
// of the buffer: a recognized magic whose header, declared payload or
// terminator byte lies past the last byte.  Append-only archives end this way whenever
// the writer was interrupted mid-frame.
func TruncatedAt(buf []byte, off int) bool {
	if off >= len(buf) {
		return false
	}
	f, err := NewFrame(buf, off)
	if errors.Is(err, ErrTruncated) {
		return true
	}
	if err != nil {
		return false
	}
	return f.End() > len(buf)
}

// GoodAt reports whether off names a structurally well-formed frame: a
// recognized magic, a declared payload that fits inside the buffer, and
// the terminator byte in place.  An offset exactly at the end of the
// buffer is also good.
//
// Any positive lookahead stops the walk after the first frame validates,
// exactly like the reference decoder: a bad byte after a valid frame
// surfaces on the next decode step instead of condemning the frame before
// it.  A lookahead of zero or less walks every frame to the end of the
// buffer.
func GoodAt(buf []byte, off, lookahead int) bool {
	for {
		if off == len(buf) {
			return true
		}
		f, err := NewFrame(buf, off)
		if err != nil || !f.WellFormed() {
			return false
		}
		if lookahead >= 1 {
			return true
		}
		off = f.End()
	}
}

// FindStart scans buf byte by byte for the first offset that begins a
// validated frame run, returning the offset relative to the start of buf.
func FindStart(buf []byte, lookahead int) (int, bool) {
	for off := 0; off < len(buf); off++ {
		if _, ok := LookupMagic(buf[off]); !ok {
			continue
		}
		if GoodAt(buf, off, lookahead) {
			return off, true
		}
	}
	return 0, false
}

/* vim :set ts=4 sw=4 sts=4 noet : */
