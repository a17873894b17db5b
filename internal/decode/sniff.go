package decode

import "bytes"

// heifBrands are ISO-BMFF major brands of HEIF family stills.
var heifBrands = [][]byte{
	[]byte("heic"), []byte("heix"), []byte("heim"), []byte("heis"),
	[]byte("hevc"), []byte("hevx"), []byte("mif1"), []byte("msf1"),
	[]byte("avif"), []byte("avis"),
}

// isHEIFHeader reports whether b starts with an ftyp box naming a HEIF brand.
func isHEIFHeader(b []byte) bool {
	if len(b) < 12 || !bytes.Equal(b[4:8], []byte("ftyp")) {
		return false
	}
	for _, brand := range heifBrands {
		if bytes.Equal(b[8:12], brand) {
			return true
		}
	}
	return false
}
