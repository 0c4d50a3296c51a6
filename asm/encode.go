// This file is part of bear - https://github.com/jackolantern/bear
//
// Copyright 2020 John Connor <john.theman.connor@gmail.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package asm

import "encoding/binary"

// encode renders the laid out items into a flat image. Gaps left by
// alignment and #at are zero filled, and the image is padded to a whole
// number of words.
func (r *resolver) encode() ([]byte, error) {
	var img []byte
	pad := func(addr int64) {
		for int64(len(img)) < addr {
			img = append(img, 0)
		}
	}
	for _, it := range r.items {
		pad(it.addr)
		switch b := it.body.(type) {
		case Instr:
			img = append(img, byte(b.Op))
		case Data:
			// truncating two's complement, little-endian
			v := uint64(it.value)
			for n := 0; n < b.Width.Bytes(); n++ {
				img = append(img, byte(v))
				v >>= 8
			}
		case Str:
			switch b.Tag {
			case StrSized:
				var hdr [4]byte
				binary.LittleEndian.PutUint32(hdr[:], uint32(len(b.Text)))
				img = append(img, hdr[:]...)
				img = append(img, b.Text...)
			case StrCStr:
				img = append(img, b.Text...)
				img = append(img, 0)
			default:
				img = append(img, b.Text...)
			}
		default:
			return nil, syntaxErrorf(it.pos, "cannot encode line body")
		}
	}
	pad(r.pos)
	if rem := len(img) % 4; rem != 0 {
		img = append(img, make([]byte, 4-rem)...)
	}
	return img, nil
}
