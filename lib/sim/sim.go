// Package sim provides an in-memory SCPI instrument for development and
// tests. It understands just enough SCPI to mirror settings back: every
// set command stores its value under its header (and the channel chosen
// with INST:SEL), and the matching query returns it.
package sim

import (
	"errors"
	"fmt"
	"maps"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// ErrNoResponse is returned for queries the simulator cannot answer, where
// a real instrument would time out.
var ErrNoResponse = errors.New("sim: no response")

// An Instrument should only be used for dev & tests.
type Instrument struct {
	sync sync.Mutex

	defaults map[string]string
	state    map[string]string
	fixed    map[string]string
	aliases  map[string]string
	selected string
	err      error
	log      *zap.Logger

	writes  []string
	queries []string
}

// Option configures an Instrument.
type Option func(*Instrument)

// WithResponse answers query with resp. A query is matched first together
// with the selected channel (set channel to "" for unchanneled queries).
func WithResponse(query, channel, resp string) Option {
	return func(s *Instrument) { s.fixed[key(normalize(query), channel)] = resp }
}

// WithValue sets the initial value stored under header, restored by *RST.
func WithValue(header, channel, value string) Option {
	return func(s *Instrument) { s.defaults[key(normalize(header), channel)] = value }
}

// WithAlias answers query (for example MEASURE:VOLTAGE:DC) with the value
// stored under header. The query argument, if any, names the channel.
func WithAlias(query, header string) Option {
	return func(s *Instrument) { s.aliases[normalize(query)] = normalize(header) }
}

// WithLogger logs every exchange at debug level.
func WithLogger(log *zap.Logger) Option {
	return func(s *Instrument) { s.log = log }
}

// New returns an Instrument with the common commands answered.
func New(opts ...Option) *Instrument {
	s := &Instrument{
		defaults: make(map[string]string),
		fixed: map[string]string{
			"*IDN?":     "LABDRV,SIM,0,0",
			"*OPC?":     "1",
			"*STB?":     "+0",
			"*OPT?":     "0",
			"SYST:ERR?": `+0,"No error"`,
		},
		aliases: make(map[string]string),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.state = maps.Clone(s.defaults)
	return s
}

// Fail makes every following exchange return err. A nil err heals the
// connection.
func (s *Instrument) Fail(err error) {
	s.sync.Lock()
	defer s.sync.Unlock()
	s.err = err
}

// Writes returns the commands received so far.
func (s *Instrument) Writes() []string {
	s.sync.Lock()
	defer s.sync.Unlock()
	return append([]string(nil), s.writes...)
}

// Queries returns the queries received so far.
func (s *Instrument) Queries() []string {
	s.sync.Lock()
	defer s.sync.Unlock()
	return append([]string(nil), s.queries...)
}

// Value returns the raw value stored under header for channel.
func (s *Instrument) Value(header, channel string) (string, bool) {
	s.sync.Lock()
	defer s.sync.Unlock()
	v, ok := s.state[key(normalize(header), channel)]
	return v, ok
}

// Close is a no-op.
func (s *Instrument) Close() error { return nil }

// Command executes a command, formatting it first if arguments are given.
func (s *Instrument) Command(format string, a ...any) error {
	cmd := format
	if a != nil {
		cmd = fmt.Sprintf(format, a...)
	}
	s.sync.Lock()
	defer s.sync.Unlock()
	if s.err != nil {
		return s.err
	}
	s.writes = append(s.writes, cmd)
	s.log.Debug("sim command", zap.String("cmd", cmd))
	_, err := s.exec(cmd)
	return err
}

// Query executes cmd and returns the responses of its query segments
// joined with ';'.
func (s *Instrument) Query(cmd string) (string, error) {
	s.sync.Lock()
	defer s.sync.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.queries = append(s.queries, cmd)
	resp, err := s.exec(cmd)
	if err != nil {
		return "", err
	}
	s.log.Debug("sim query", zap.String("cmd", cmd), zap.String("response", resp))
	return resp + "\n", nil
}

func (s *Instrument) exec(cmd string) (string, error) {
	var resps []string
	for _, seg := range strings.Split(cmd, ";") {
		seg = normalize(seg)
		if seg == "" {
			continue
		}
		header, arg, _ := strings.Cut(seg, " ")
		switch {
		case header == "INST:SEL" || header == "INSTRUMENT:SELECT":
			s.selected = arg
		case header == "*RST":
			s.state = maps.Clone(s.defaults)
			s.selected = ""
		case strings.HasSuffix(header, "?"):
			resp, err := s.answer(seg, header, arg)
			if err != nil {
				return "", err
			}
			resps = append(resps, resp)
		default:
			// Keep the number, drop units such as Hz or dBm.
			value, _, _ := strings.Cut(arg, " ")
			s.state[key(header, s.selected)] = value
		}
	}
	return strings.Join(resps, ";"), nil
}

func (s *Instrument) answer(seg, header, arg string) (string, error) {
	if resp, ok := s.fixed[key(seg, s.selected)]; ok {
		return resp, nil
	}
	if resp, ok := s.fixed[seg]; ok {
		return resp, nil
	}
	header = strings.TrimSuffix(header, "?")
	if target, ok := s.aliases[header]; ok {
		ch := s.selected
		if arg != "" {
			ch = arg
		}
		if v, ok := s.state[key(target, ch)]; ok {
			return v, nil
		}
	}
	if arg == "" {
		if v, ok := s.state[key(header, s.selected)]; ok {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w for %q", ErrNoResponse, seg)
}

func key(header, channel string) string {
	if channel == "" {
		return header
	}
	return header + "@" + channel
}

// normalize trims the segment, drops a leading colon, upper-cases the
// header and collapses runs of spaces.
func normalize(seg string) string {
	seg = strings.TrimPrefix(strings.TrimSpace(seg), ":")
	fields := strings.Fields(seg)
	if len(fields) == 0 {
		return ""
	}
	fields[0] = strings.ToUpper(fields[0])
	return strings.Join(fields, " ")
}
