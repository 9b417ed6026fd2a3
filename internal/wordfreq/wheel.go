package wordfreq

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"strings"
)

var errNotInWheel = errors.New("not found in wheel")

// withWheelFile opens the first archive member accepted by pick and hands
// its contents to read.
func withWheelFile(wheelPath string, pick func(files []*zip.File) *zip.File, read func(name string, r io.Reader) error) error {
	archive, err := zip.OpenReader(wheelPath)
	if err != nil {
		return fmt.Errorf("open wheel %s: %w", wheelPath, err)
	}
	defer archive.Close()

	member := pick(archive.File)
	if member == nil {
		return errNotInWheel
	}
	body, err := member.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", member.Name, err)
	}
	defer body.Close()
	return read(member.Name, body)
}

func readWheelEntries(wheelPath, lang, listType string) ([]Entry, error) {
	var entries []Entry
	err := withWheelFile(wheelPath,
		func(files []*zip.File) *zip.File { return selectDataFile(files, lang, listType) },
		func(name string, r io.Reader) error {
			var err error
			entries, err = decodeDataFile(name, r)
			return err
		})
	if errors.Is(err, errNotInWheel) {
		return nil, fmt.Errorf("%s list for %q: %w", listType, lang, err)
	}
	return entries, err
}

// selectDataFile finds wordfreq/data/<listType>_<lang>.msgpack[.gz],
// preferring the compressed file the published wheels ship.
func selectDataFile(files []*zip.File, lang, listType string) *zip.File {
	want := fmt.Sprintf("wordfreq/data/%s_%s.msgpack", strings.ToLower(listType), strings.ToLower(lang))
	var fallback *zip.File
	for _, f := range files {
		switch strings.ToLower(f.Name) {
		case want + ".gz":
			return f
		case want:
			fallback = f
		}
	}
	return fallback
}

func readWheelLicense(wheelPath string) ([]byte, error) {
	var text []byte
	err := withWheelFile(wheelPath,
		func(files []*zip.File) *zip.File {
			for _, f := range files {
				if strings.Contains(strings.ToLower(f.Name), "license") {
					return f
				}
			}
			return nil
		},
		func(_ string, r io.Reader) error {
			var err error
			text, err = io.ReadAll(r)
			return err
		})
	if errors.Is(err, errNotInWheel) {
		return nil, fmt.Errorf("license: %w", err)
	}
	return text, err
}
