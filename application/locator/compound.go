package locator

import (
	"strconv"
	"strings"

	"web_locator/domain/entities"
)

// isCompound reports whether the raw string uses compound syntax: at least
// one unescaped '&' separator, and not a URL (query strings are full of
// ampersands that mean nothing to us).
func isCompound(raw string) bool {
	if isURLLike(raw) {
		return false
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] == '&' && (i == 0 || raw[i-1] != '\\') {
			return true
		}
	}
	return false
}

// splitCompound splits on unescaped '&' and unescapes "\&" inside each
// segment.
func splitCompound(raw string) []string {
	var segments []string
	var b strings.Builder
	for i := 0; i < len(raw); i++ {
		switch {
		case raw[i] == '\\' && i+1 < len(raw) && raw[i+1] == '&':
			b.WriteByte('&')
			i++
		case raw[i] == '&':
			segments = append(segments, b.String())
			b.Reset()
		default:
			b.WriteByte(raw[i])
		}
	}
	segments = append(segments, b.String())
	return segments
}

func unescapeAmp(raw string) string {
	return strings.ReplaceAll(raw, `\&`, "&")
}

// parseCompound splits a compound locator into its base spec and modifier
// chain. Segment order is the application order and is preserved verbatim:
// "first=true&has_text=X" indexes before filtering, "has_text=X&first=true"
// filters before indexing, and the two are observably different.
//
// Unrecognized keys and malformed values are logged and dropped; a bad
// modifier never aborts the chain.
func (p *Parser) parseCompound(raw string) (entities.LocatorSpec, []entities.ModifierToken) {
	segments := splitCompound(raw)
	spec := p.parseSingle(segments[0])

	var mods []entities.ModifierToken
	for _, segment := range segments[1:] {
		key, value, ok := strings.Cut(segment, "=")
		if !ok {
			p.log.Warnf("ignoring modifier segment %q: missing '='", segment)
			continue
		}
		switch entities.ModifierKind(key) {
		case entities.ModSubLocator:
			mods = append(mods, entities.ModifierToken{Kind: entities.ModSubLocator, Value: value})
		case entities.ModHasText:
			mods = append(mods, entities.ModifierToken{Kind: entities.ModHasText, Value: value})
		case entities.ModHasNotText:
			mods = append(mods, entities.ModifierToken{Kind: entities.ModHasNotText, Value: value})
		case entities.ModFirst:
			if coerceBool(value) {
				mods = append(mods, entities.ModifierToken{Kind: entities.ModFirst})
			}
		case entities.ModLast:
			if coerceBool(value) {
				mods = append(mods, entities.ModifierToken{Kind: entities.ModLast})
			}
		case entities.ModNth:
			n, err := strconv.Atoi(value)
			if err != nil {
				p.log.Warnf("ignoring modifier nth=%q: not an integer", value)
				continue
			}
			mods = append(mods, entities.ModifierToken{Kind: entities.ModNth, Index: n})
		case entities.ModVisibleOnly:
			if coerceBool(value) {
				mods = append(mods, entities.ModifierToken{Kind: entities.ModVisibleOnly})
			}
		case "exact":
			// Consumed by the base spec, never applied as a chain step.
			if spec.Kind == entities.KindText {
				spec.Exact = coerceBool(value)
			}
		default:
			p.log.Warnf("ignoring unknown modifier key %q", key)
		}
	}
	return spec, mods
}
