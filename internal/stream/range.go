package stream

import (
	"fmt"
	"strconv"
	"strings"
)

// byteRange is the resolved, inclusive response range for one request.
type byteRange struct {
	first, last int64
}

func (r byteRange) length() int64 { return r.last - r.first + 1 }

// parseRange implements spec.md §4.6 step 5's exact grammar and normalization:
// "bytes=" [first] "-" [last], at least one bound required, suffix and
// open-ended forms supported, and every malformed or impossible range
// (parse failure, first > last, first >= size) is reported as not satisfiable.
func parseRange(header string, size int64) (byteRange, bool, error) {
	if header == "" {
		return byteRange{0, size - 1}, false, nil
	}

	spec, ok := strings.CutPrefix(header, "bytes=")
	if !ok {
		return byteRange{}, false, fmt.Errorf("stream: range header missing bytes= prefix")
	}
	// Only a single range is accepted; a comma indicates a multi-range
	// request, which this scope does not support.
	if strings.Contains(spec, ",") {
		return byteRange{}, false, fmt.Errorf("stream: multi-range requests not supported")
	}

	firstStr, lastStr, ok := strings.Cut(spec, "-")
	if !ok {
		return byteRange{}, false, fmt.Errorf("stream: malformed range %q", header)
	}
	if firstStr == "" && lastStr == "" {
		return byteRange{}, false, fmt.Errorf("stream: range missing both bounds")
	}

	var first, last int64
	var err error

	switch {
	case firstStr == "":
		// Suffix range: last N bytes of the file.
		n, perr := strconv.ParseInt(lastStr, 10, 64)
		if perr != nil {
			return byteRange{}, false, fmt.Errorf("stream: malformed suffix length: %w", perr)
		}
		first = size - n
		last = size - 1
	case lastStr == "":
		first, err = strconv.ParseInt(firstStr, 10, 64)
		if err != nil {
			return byteRange{}, false, fmt.Errorf("stream: malformed range start: %w", err)
		}
		last = size - 1
	default:
		first, err = strconv.ParseInt(firstStr, 10, 64)
		if err != nil {
			return byteRange{}, false, fmt.Errorf("stream: malformed range start: %w", err)
		}
		last, err = strconv.ParseInt(lastStr, 10, 64)
		if err != nil {
			return byteRange{}, false, fmt.Errorf("stream: malformed range end: %w", err)
		}
		if last > size-1 {
			last = size - 1
		}
	}

	if first < 0 || first > last || first >= size {
		return byteRange{}, false, fmt.Errorf("stream: range not satisfiable for size %d", size)
	}

	return byteRange{first: first, last: last}, true, nil
}
