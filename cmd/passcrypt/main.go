// Command passcrypt encrypts passwords for a PrettyServer-style login API,
// talks to such a server, and can run one.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := run(context.Background(), os.Args[1:], DefaultStreams()); err != nil {
		fmt.Fprintf(os.Stderr, "passcrypt: %v\n", err)
		os.Exit(1)
	}
}
