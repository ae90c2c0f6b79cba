// Package compression stores disk images as RLE8-encoded data wrapped in gzip.
//
// A CoCo disk image is always 161,280 bytes no matter how little is on it, and a
// freshly formatted one is nothing but 0xFF. Most images in practice are a few
// files surrounded by long runs of 0xFF (never-used granules) and 0x00 (the
// zeroed tail of each file's last granule). Run-length encoding the raw image
// first and then gzipping the result shrinks an empty image to a few dozen
// bytes, noticeably better than gzip alone.
//
// The run-length encoding is the one used by the BMP file format, RLE8. If a
// byte B occurs N times in a row where N >= 2, B is written twice, followed by a
// third (unsigned) byte giving how many more times B occurred. For example:
//
//	WXXXXXXXXXXXXXXXYZZ
//	W XX 13 Y ZZ 0
//
// One group can therefore describe at most 257 bytes. Longer runs are split into
// several groups, so a run of 300 "X" is stored as `XX 255 XX 41`. Because the
// byte is its own escape sequence, a pair of identical bytes costs three bytes:
// the pair followed by a zero.
//
// Files named with the [Extension] suffix are in this format.
package compression
