// Package vbb decodes VBB vehicle telemetry logs into per-channel time
// series.
//
// A VBB file is a short fixed header followed by a stream of tagged
// variable-length records:
//
//	file   := header record*
//	header := magic version flags created modified
//	magic  := 0x56 0x42 0x42 ("VBB")
//
// version is one byte, 1 or 2. flags is four bytes; bit 0 of the first
// flag byte selects big-endian field encoding (little-endian otherwise)
// and bit 1 marks file timestamps as UTC. created and modified are
// eight-byte datetimes whose encoding depends on the version:
//
//	v1: u16 year, u8 month, day, hour, minute, second, one pad byte
//	v2: u64 whose top two bits carry the zone kind (00 UTC, 10 local,
//	    otherwise unspecified) and whose low 62 bits count 100ns ticks
//	    since 0001-01-01
//
// Every record starts with a one-byte tag:
//
//	5   group definition   u8 id, name
//	6   dictionary item    u8 group id, name, type byte, typed value
//	7   channel definition u16 id, u8 group id, short name, long name,
//	                       units, type byte, f64 scale, f64 offset,
//	                       metadata
//	8   channel group      u8 group id, u8 count, count x u16 channel ids
//	9   sample             u32 timestamp (100us ticks), u8 group id,
//	                       fixed-width member values in group order
//	13  binary dump        u16 block type, name, type byte, typed value
//
// Any other tag is a format error: decoding halts and everything parsed
// before the bad byte is retained.
//
// Strings are a 7-bit varint length followed by UTF-8 bytes, stored
// reversed in little-endian files. Varints carry seven payload bits per
// byte with the high bit as a continuation flag; big-endian files
// accumulate the most significant group first, little-endian files the
// least significant first.
//
// Sample records are fixed-width per channel group: one tag byte, four
// timestamp bytes, one group id byte, then each member channel's value at
// its precomputed offset. Member values are reinterpreted per the
// channel's declared type, widened to float64 and mapped through
// value*scale+offset.
//
// Decoding is a single forward pass over fixed-size chunks of the file.
// Sample record positions are indexed per chunk and extracted in bulk
// before the next chunk loads, so memory stays bounded regardless of file
// size and the decoded output is independent of the chunk size. Channel
// timestamps count seconds since midnight; a non-increasing step is
// treated as a midnight rollover and all later samples gain 86400
// seconds.
package vbb
