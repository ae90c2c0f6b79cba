/*
Package cocodos implements the file system used by Disk Extended Color BASIC
(CoCo DOS) on the TRS-80 Color Computer.

The format supports exactly one disk geometry:

	1 head
	35 tracks (0 - 34)
	18 sectors per track (1 - 18)
	256 bytes per sector

Like other TRSDOS-derived formats there are two granules per track, so a
granule is a group of nine sectors. Track 17 holds the directory, leaving 68
granules for file data. The entire image is 161,280 bytes, of which 156,672 are
available for files.

Within the directory track, sector 2 holds the granule map and sectors 3 - 11
hold the directory entries. The granule map works more or less like the FAT in
MS-DOS; each byte represents one granule:

	0x00 - 0x43  next granule in the file's chain
	0xC0 - 0xC9  last granule of the file; the low nibble is the number of
	             sectors used in it
	0xFF         free
	anything     corrupt, or space allocated to a "hidden" file
	else

Directory entries are 32 bytes:

	0 - 7    file name, padded with spaces
	8 - 10   extension, padded with spaces
	11       file type (0 Basic, 1 Data, 2 machine code, 3 text editor)
	12       encoding (0x00 binary, 0xFF ASCII)
	13       first granule
	14 - 15  bytes used in the last sector of the file (big endian!)
	16 - 31  unused

A freshly formatted disk is nothing but 0xFF bytes, which marks every granule
free and every directory entry unused.

Format information is gleaned from http://dragon32.info/info/tandydsk.html
*/

package cocodos
