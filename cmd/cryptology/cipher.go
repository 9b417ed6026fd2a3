package main

import (
	"fmt"

	"fortio.org/safecast"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/cryptology/internal/alphabet"
	"github.com/verte-zerg/cryptology/internal/caesar"
	"github.com/verte-zerg/cryptology/internal/vigenere"
)

var (
	cipherShift     int
	cipherKey       string
	cipherKeyLength int
)

func newEncryptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encrypt",
		Short: "Encrypt with a known key",
	}
	cmd.AddCommand(newCaesarCipherCmd(true))
	cmd.AddCommand(newVigenereCipherCmd(true))
	return cmd
}

func newDecryptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decrypt",
		Short: "Decrypt with a known key or key length",
	}
	cmd.AddCommand(newCaesarCipherCmd(false))
	cmd.AddCommand(newVigenereCipherCmd(false))
	return cmd
}

func newCaesarCipherCmd(encrypt bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "caesar",
		Short: "Caesar cipher with a known shift",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateShift(cipherShift); err != nil {
				return err
			}
			text, err := readInput(cmd)
			if err != nil {
				return err
			}
			op := caesar.Decrypt
			if encrypt {
				op = caesar.Encrypt
			}
			out, err := op(text, cipherShift)
			if err != nil {
				return err
			}
			return writeOutput(cmd, out)
		},
	}
	cmd.Flags().IntVar(&cipherShift, "shift", 0, "shift (0-25)")
	if err := cmd.MarkFlagRequired("shift"); err != nil {
		panic(err)
	}
	return cmd
}

func newVigenereCipherCmd(encrypt bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vigenere",
		Short: "Vigenère cipher with a known key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if encrypt || cipherKey != "" {
				return runVigenereWithKey(cmd, encrypt)
			}
			return runVigenereWithLength(cmd)
		},
	}
	cmd.Flags().StringVar(&cipherKey, "key", "", "key letters")
	if encrypt {
		if err := cmd.MarkFlagRequired("key"); err != nil {
			panic(err)
		}
		return cmd
	}
	cmd.Flags().IntVar(&cipherKeyLength, "key-length", 0, "known key length; the key itself is recovered")
	cmd.MarkFlagsMutuallyExclusive("key", "key-length")
	cmd.MarkFlagsOneRequired("key", "key-length")
	return cmd
}

func runVigenereWithKey(cmd *cobra.Command, encrypt bool) error {
	if cipherKey == "" {
		return fmt.Errorf("--key must not be empty")
	}
	text, err := readInput(cmd)
	if err != nil {
		return err
	}
	op := vigenere.DecryptWithKey
	if encrypt {
		op = vigenere.Encrypt
	}
	out, err := op(text, cipherKey)
	if err != nil {
		return err
	}
	return writeOutput(cmd, out)
}

func runVigenereWithLength(cmd *cobra.Command) error {
	if cipherKeyLength < vigenere.MinKeyLength || cipherKeyLength > vigenere.MaxKeyLength {
		return fmt.Errorf("--key-length must be between %d and %d", vigenere.MinKeyLength, vigenere.MaxKeyLength)
	}
	tables, err := loadTables(true)
	if err != nil {
		return err
	}
	text, err := readInput(cmd)
	if err != nil {
		return err
	}
	h, err := vigenere.CrackLength(text, cipherKeyLength, tables)
	if err != nil {
		return err
	}
	if err := writeOutput(cmd, h.Plaintext); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(cmd.ErrOrStderr(), "Key: %s (chi-square %.3f)\n", keyColor.Sprint(h.Key), h.ChiSquare); err != nil {
		return err
	}
	return nil
}

func validateShift(shift int) error {
	off, err := safecast.Conv[uint8](shift)
	if err != nil || int(off) >= alphabet.Size {
		return fmt.Errorf("--shift must be between 0 and %d, got %d", alphabet.Size-1, shift)
	}
	return nil
}
