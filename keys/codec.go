package keys

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const esc = "\x1b"

// sequences maps named keys to the fixed escape sequence an xterm sends.
var sequences = map[Key]string{
	Enter:     "\r",
	Return:    "\r",
	Tab:       "\t",
	Space:     " ",
	Backspace: "\x7f",
	Delete:    esc + "[3~",
	Insert:    esc + "[2~",
	Up:        esc + "[A",
	Down:      esc + "[B",
	Right:     esc + "[C",
	Left:      esc + "[D",
	Home:      esc + "[H",
	End:       esc + "[F",
	PageUp:    esc + "[5~",
	PageDown:  esc + "[6~",
	Clear:     esc + "[E",
	Linefeed:  "\n",
	Esc:       esc,
	Escape:    esc,
	"f1":      esc + "OP",
	"f2":      esc + "OQ",
	"f3":      esc + "OR",
	"f4":      esc + "OS",
	"f5":      esc + "[15~",
	"f6":      esc + "[17~",
	"f7":      esc + "[18~",
	"f8":      esc + "[19~",
	"f9":      esc + "[20~",
	"f10":     esc + "[21~",
	"f11":     esc + "[23~",
	"f12":     esc + "[24~",
}

// csiUCodes maps the keys that use CSI-u encoding under modifiers to their
// Unicode codepoint.
var csiUCodes = map[Key]int{
	Enter:  13,
	Return: 13,
	Tab:    9,
	// Backspace transmits DEL, and that is also the codepoint terminals
	// report in the CSI-u form.
	Backspace: 127,
	Esc:       27,
	Escape:    27,
}

// Encode turns a key chord into the byte string a terminal expects. The
// chord may contain any number of modifiers and any number of main keys;
// each main key is encoded in input order with the chord's modifier set
// applied, and the encodings are concatenated. A chord of only modifiers
// encodes to an empty string.
func Encode(chord ...Key) []byte {
	var ctrl, alt, shift bool
	mains := make([]Key, 0, len(chord))
	for _, k := range chord {
		switch k {
		case Ctrl:
			ctrl = true
		case Alt:
			alt = true
		case Shift:
			shift = true
		case Meta:
			// meta has no wire encoding of its own
		default:
			mains = append(mains, k)
		}
	}

	var b strings.Builder
	for _, k := range mains {
		b.WriteString(encodeOne(k, ctrl, alt, shift))
	}
	return []byte(b.String())
}

func encodeOne(k Key, ctrl, alt, shift bool) string {
	single := utf8.RuneCountInString(string(k)) == 1

	// Ctrl with a single character: letters become C0 control bytes, other
	// characters pass through raw. Shift and alt are ignored on this path.
	if ctrl && single {
		c := k[0]
		if c >= 'a' && c <= 'z' {
			return string(rune(c - 'a' + 1))
		}
		return string(k)
	}

	// Modified specials that the legacy encoding cannot represent use the
	// CSI-u form: ESC [ code ; modifier u.
	if ctrl || alt || shift {
		if code, ok := csiUCodes[k]; ok {
			mod := 1
			if shift {
				mod++
			}
			if alt {
				mod += 2
			}
			if ctrl {
				mod += 4
			}
			return fmt.Sprintf("%s[%d;%du", esc, code, mod)
		}
	}

	if seq, ok := sequences[k]; ok {
		if alt {
			return esc + seq
		}
		return seq
	}

	if single {
		s := string(k)
		if shift {
			s = strings.ToUpper(s)
		}
		if alt {
			return esc + s
		}
		return s
	}

	// Last-resort passthrough for names with no known encoding.
	return string(k)
}
