package format

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	apperrors "go-doc-ingest/internal/errors"
)

// Strategy identifies which processing path handles an input file
type Strategy string

const (
	StrategyText        Strategy = "text"
	StrategyImage       Strategy = "image"
	StrategyPDF         Strategy = "pdf"
	StrategyDocx        Strategy = "docx"
	StrategyAudioVideo  Strategy = "audio/video"
	StrategyUnsupported Strategy = "unsupported"
)

const octetStream = "application/octet-stream"

// extensionMIME maps file extensions to MIME types for inputs declared as
// generic octet-stream.
var extensionMIME = map[string]string{
	".txt":  "text/plain",
	".text": "text/plain",
	".md":   "text/markdown",
	".csv":  "text/csv",
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".odt":  "application/vnd.oasis.opendocument.text",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".m4a":  "audio/mp4",
	".ogg":  "audio/ogg",
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
}

// Classify maps a buffer plus its declared MIME type and file name to a
// processing strategy. A generic octet-stream declaration falls back to the
// extension table, then to content sniffing.
func Classify(data []byte, fileName, declaredMIME string) (Strategy, string, error) {
	mime := strings.ToLower(strings.TrimSpace(declaredMIME))
	if idx := strings.IndexByte(mime, ';'); idx >= 0 {
		mime = strings.TrimSpace(mime[:idx])
	}

	if mime == "" || mime == octetStream {
		ext := strings.ToLower(filepath.Ext(fileName))
		if inferred, ok := extensionMIME[ext]; ok {
			mime = inferred
		} else if len(data) > 0 {
			mime = mimetype.Detect(data).String()
			if idx := strings.IndexByte(mime, ';'); idx >= 0 {
				mime = strings.TrimSpace(mime[:idx])
			}
		}
	}

	strategy := strategyForMIME(mime)
	if strategy == StrategyUnsupported {
		return StrategyUnsupported, mime, apperrors.NewUnsupportedFormatError(
			"unsupported file format: "+displayMIME(mime, fileName), nil)
	}
	return strategy, mime, nil
}

func strategyForMIME(mime string) Strategy {
	switch {
	case mime == "application/pdf":
		return StrategyPDF
	case mime == "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		mime == "application/vnd.oasis.opendocument.text",
		mime == "application/msword":
		return StrategyDocx
	case strings.HasPrefix(mime, "text/"),
		mime == "application/json",
		mime == "application/xml":
		return StrategyText
	case strings.HasPrefix(mime, "image/"):
		return StrategyImage
	case strings.HasPrefix(mime, "audio/"), strings.HasPrefix(mime, "video/"):
		return StrategyAudioVideo
	default:
		return StrategyUnsupported
	}
}

func displayMIME(mime, fileName string) string {
	if mime != "" && mime != octetStream {
		return mime
	}
	if ext := filepath.Ext(fileName); ext != "" {
		return ext
	}
	return "unknown"
}
