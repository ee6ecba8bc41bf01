package inventory

import (
	"math/rand"
	"regexp"
)

const (
	letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits  = "0123456789"

	maxIDAttempts = 10
)

// ProductIDPattern is the shape of generated catalog ids, e.g. ABC-123456-X9Z.
var ProductIDPattern = regexp.MustCompile(`^[A-Z]{3}-[0-9]{6}-[A-Z0-9]{3}$`)

// GenerateProductID returns a random id of three letters, six digits and
// three letters-or-digits.
func GenerateProductID() string {
	buf := make([]byte, 0, 14)
	for i := 0; i < 3; i++ {
		buf = append(buf, letters[rand.Intn(len(letters))])
	}
	buf = append(buf, '-')
	for i := 0; i < 6; i++ {
		buf = append(buf, digits[rand.Intn(len(digits))])
	}
	buf = append(buf, '-')
	for i := 0; i < 3; i++ {
		pool := digits
		if rand.Intn(2) == 0 {
			pool = letters
		}
		buf = append(buf, pool[rand.Intn(len(pool))])
	}
	return string(buf)
}
