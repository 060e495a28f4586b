package helpers

import (
	"context"
	crand "crypto/rand"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const (
	AvatarFolder = "avatars"
	TourFolder   = "tours"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// GenerateSlug derives a URL slug from a tour title: lowercase, runs of
// non-alphanumeric characters collapse to a single hyphen, leading and
// trailing hyphens are trimmed.
func GenerateSlug(title string) string {
	s := strings.ToLower(title)
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

const confirmationAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// ConfirmationNumber builds a human-facing booking reference: the MRM prefix,
// a millisecond timestamp, and a 5-character base-36 suffix. The label is not
// collision-proof on its own; the bookings collection carries a unique index
// and the repository retries once on a duplicate.
func ConfirmationNumber() string {
	suffix := make([]byte, 5)
	buf := make([]byte, 5)
	if _, err := crand.Read(buf); err != nil {
		// Extremely unlikely; fall back to a time-derived suffix so the
		// caller still gets a syntactically valid reference.
		for i := range suffix {
			suffix[i] = confirmationAlphabet[(time.Now().UnixNano()>>uint(i*4))%36]
		}
	} else {
		for i, b := range buf {
			suffix[i] = confirmationAlphabet[int(b)%len(confirmationAlphabet)]
		}
	}
	return "MRM" + strconv.FormatInt(time.Now().UnixMilli(), 10) + string(suffix)
}

// UploadImages pushes local or base64 image payloads to Cloudinary and
// returns the secure URLs in order. Empty entries are skipped.
func UploadImages(ctx context.Context, cld *cloudinary.Cloudinary, images []string, folder string) ([]string, error) {
	var urls []string
	for _, img := range images {
		if strings.TrimSpace(img) == "" {
			continue
		}
		res, err := cld.Upload.Upload(ctx, img, uploader.UploadParams{
			Folder: folder,
			Tags:   []string{"marhaba"},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to upload image: %w", err)
		}
		urls = append(urls, res.SecureURL)
	}
	return urls, nil
}
