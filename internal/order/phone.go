package order

import (
	"regexp"
	"strings"
)

var phonePattern = regexp.MustCompile(`^\+62[0-9]{9,12}$`)

// NormalizePhone membereskan nomor telepon ke format +62 sebelum dikirim.
// Urutan langkahnya penting dan tidak boleh diubah:
//  1. trim whitespace
//  2. prefix dobel "+6262" dilipat jadi "+62" (berulang, jaga-jaga user
//     re-entry nomor yang sudah ternormalisasi)
//  3. "62..." tanpa plus -> tambah "+"
//  4. sisanya yang belum ber-"+" sama sekali -> tambah "+62"
//
// String hasil normalisasi selalu dikembalikan, valid atau tidak; yang
// memutuskan blokir submit adalah caller. Kosong itu valid (telepon
// opsional) dan ternormalisasi jadi kosong.
func NormalizePhone(raw string) (normalized string, ok bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", true
	}
	for strings.HasPrefix(s, "+6262") {
		s = "+62" + s[len("+6262"):]
	}
	if strings.HasPrefix(s, "62") {
		s = "+" + s
	}
	if !strings.HasPrefix(s, "+62") && !strings.HasPrefix(s, "+") {
		s = "+62" + s
	}
	return s, phonePattern.MatchString(s)
}
