package domain

import "fmt"

type Customer struct {
	ID    string
	Name  string
	Email string
}

// FormatCustomerID renders a registry sequence number as C001, C002, ...
// Numbers past 999 keep all their digits.
func FormatCustomerID(seq int) string {
	return fmt.Sprintf("C%03d", seq)
}
