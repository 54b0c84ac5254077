package settings

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"
)

// loadLocation reads and decodes one location. The decoder is selected by
// file extension; a ".gz" suffix is stripped after decompression and the
// extension is re-derived from the remainder.
func (s *Settings) loadLocation(loc string) (map[string]any, error) {
	data, name, err := s.readLocation(loc)
	if err != nil {
		return nil, err
	}

	if strings.HasSuffix(strings.ToLower(name), ".gz") {
		data, err = gunzip(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress settings location '%s': %w", loc, err)
		}
		name = name[:len(name)-len(".gz")]
	}

	values, err := decodeFormat(data, filepath.Ext(name))
	if err != nil {
		return nil, fmt.Errorf("failed to decode settings location '%s': %w", loc, err)
	}

	s.log.Debug("loaded settings from location",
		zap.String("location", loc),
		zap.Int("keys", len(values)))
	return values, nil
}

// readLocation fetches the raw bytes of a location and returns the path
// portion used for extension detection. Plain paths and file:// URLs read
// from disk; http(s) URLs are fetched with the retryable client.
func (s *Settings) readLocation(loc string) ([]byte, string, error) {
	if u, err := url.Parse(loc); err == nil {
		switch u.Scheme {
		case "http", "https":
			data, err := s.fetch(loc)
			if err != nil {
				return nil, "", err
			}
			return data, path.Clean(u.Path), nil
		case "file":
			data, err := os.ReadFile(u.Path)
			if err != nil {
				return nil, "", fmt.Errorf("failed to read settings file '%s': %w", u.Path, err)
			}
			return data, u.Path, nil
		}
	}

	data, err := os.ReadFile(loc)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read settings file '%s': %w", loc, err)
	}
	return data, loc, nil
}

func (s *Settings) fetch(loc string) ([]byte, error) {
	resp, err := s.http.Get(loc)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch settings from '%s': %w", loc, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("failed to fetch settings from '%s': status %d", loc, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings response from '%s': %w", loc, err)
	}
	return data, nil
}

func gunzip(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
