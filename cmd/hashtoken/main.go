// hashtoken печатает bcrypt-хеш общего секрета для переменной POST_TOKEN_HASH.
//
//	go run ./cmd/hashtoken 's3cret'
//	echo -n 's3cret' | go run ./cmd/hashtoken
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/Dosada05/commander-ledger/utils"
)

func main() {
	token, err := readToken()
	if err != nil {
		fmt.Fprintln(os.Stderr, "hashtoken:", err)
		os.Exit(1)
	}

	hash, err := utils.HashToken(token)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hashtoken:", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}

func readToken() (string, error) {
	if len(os.Args) > 1 {
		return os.Args[1], nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read token from stdin: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
