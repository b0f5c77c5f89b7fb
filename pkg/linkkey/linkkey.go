package linkkey

import (
	"crypto/rand"
	"math/big"
)

// KeyLength public kodların uzunluğu (sessions.public_code varchar(11)).
const KeyLength = 11

// alphabet karıştırılması kolay karakterleri (0/O, 1/l/I) içermez.
const alphabet = "abcdefghjkmnpqrstuvwxyz23456789ABCDEFGHJKMNPQRSTUVWXYZ"

// Generate kriptografik rastgelelikle yeni bir public kod üretir.
// Tekillik veritabanındaki unique index ile garanti edilir; çakışma
// durumunda çağıran tarafın yeni bir kod üretip tekrar denemesi beklenir.
func Generate() (string, error) {
	buf := make([]byte, KeyLength)
	max := big.NewInt(int64(len(alphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = alphabet[n.Int64()]
	}
	return string(buf), nil
}
