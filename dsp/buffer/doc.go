// Package buffer provides planar multichannel sample storage that is sized
// once and reused across audio blocks, plus helpers to move between planar
// and interleaved layouts at the host boundary.
package buffer
