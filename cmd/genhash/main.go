// cmd/genhash/main.go: prints a bcrypt hash for a password.
// Uso: go run ./cmd/genhash <password>
package main

import (
	"fmt"
	"os"

	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/service"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "uso: genhash <password>")
		os.Exit(2)
	}
	h, err := bcrypt.GenerateFromPassword([]byte(os.Args[1]), service.BcryptCost)
	if err != nil {
		panic(err)
	}
	fmt.Println(string(h))
}
