package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/lox/pokerescrow/internal/fileutil"
	"github.com/lox/pokerescrow/internal/identity"
)

// KeygenCmd creates an actor key file
type KeygenCmd struct {
	Out   string `kong:"default='actor.key',help='Where to write the hex private key'"`
	Seed  string `kong:"help='Derive the key from this passphrase instead of randomly'"`
	Force bool   `kong:"help='Overwrite an existing key file'"`
}

func (c *KeygenCmd) Run() error {
	if !c.Force {
		if _, err := os.Stat(c.Out); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", c.Out)
		} else if !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}

	key := identity.Generate()
	if c.Seed != "" {
		key = identity.FromSeed([]byte(c.Seed))
	}
	if err := fileutil.WriteFileAtomic(c.Out, []byte(key.PrivateHex()+"\n"), 0o600); err != nil {
		return err
	}

	fmt.Printf("address:    %s\npublic key: %s\nwritten to: %s\n", key.Address(), key.PublicHex(), c.Out)
	return nil
}

// loadKey reads a key file written by keygen.
func loadKey(path string) (*identity.KeyPair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return identity.ParsePrivateKey(strings.TrimSpace(string(data)))
}
