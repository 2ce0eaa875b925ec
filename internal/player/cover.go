package player

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// maxCoverBytes caps downloaded or decoded cover art. Payloads beyond this
// are truncated on download and rejected on decode.
const maxCoverBytes = 5 << 20

// handleCover decodes a cover art message into raw image bytes.
//
// The payload is either an absolute URL to fetch over HTTP, or the image
// itself encoded as base64. Newlines are stripped first because devices
// commonly wrap long base64 payloads. "none" and the empty payload clear
// the stored image.
func (p *Player) handleCover(payload []byte) error {
	text := strings.ReplaceAll(string(payload), "\n", "")

	if text == noneSentinel || text == "" {
		p.apply(func(s *snapshot) { s.cover = nil })
		return nil
	}

	var img []byte
	if u, err := url.Parse(text); err == nil && u.Scheme != "" && u.Host != "" {
		fetched, fetchErr := p.fetchCover(text)
		if fetchErr != nil {
			return fetchErr
		}
		img = fetched
	} else {
		decoded, decodeErr := base64.StdEncoding.DecodeString(text)
		if decodeErr != nil {
			return fmt.Errorf("%w: cover is neither a URL nor base64: %v", ErrDecode, decodeErr)
		}
		if len(decoded) > maxCoverBytes {
			return fmt.Errorf("%w: cover exceeds %d bytes", ErrDecode, maxCoverBytes)
		}
		img = decoded
	}

	if len(img) == 0 {
		p.apply(func(s *snapshot) { s.cover = nil })
		return nil
	}

	p.apply(func(s *snapshot) { s.cover = img })
	return nil
}

// fetchCover downloads cover art from a URL carried in a cover message.
func (p *Player) fetchCover(rawURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), coverFetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: cover URL: %v", ErrDecode, err)
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching cover: %v", ErrDecode, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: cover fetch returned %d", ErrDecode, resp.StatusCode)
	}

	img, err := io.ReadAll(io.LimitReader(resp.Body, maxCoverBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading cover body: %v", ErrDecode, err)
	}
	return img, nil
}
