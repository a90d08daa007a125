package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"gopkg.in/yaml.v2"

	"grimm.is/rtlink/internal/hwinfo"
	"grimm.is/rtlink/internal/link"
	"grimm.is/rtlink/internal/tui"
)

// Output formats.
const (
	formatTable = "table"
	formatText  = "text"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

// linkView is the serialized form of a link.
type linkView struct {
	Index     int32        `json:"index" yaml:"index"`
	Name      string       `json:"name" yaml:"name"`
	Kind      string       `json:"kind,omitempty" yaml:"kind,omitempty"`
	SlaveKind string       `json:"slave_kind,omitempty" yaml:"slave_kind,omitempty"`
	MTU       uint32       `json:"mtu,omitempty" yaml:"mtu,omitempty"`
	TxQLen    uint32       `json:"txqlen,omitempty" yaml:"txqlen,omitempty"`
	Address   string       `json:"address,omitempty" yaml:"address,omitempty"`
	Broadcast string       `json:"broadcast,omitempty" yaml:"broadcast,omitempty"`
	Link      uint32       `json:"link,omitempty" yaml:"link,omitempty"`
	Master    uint32       `json:"master,omitempty" yaml:"master,omitempty"`
	OperState string       `json:"operstate" yaml:"operstate"`
	Alias     string       `json:"alias,omitempty" yaml:"alias,omitempty"`
	Flags     []string     `json:"flags" yaml:"flags"`
	Unknown   []uint16     `json:"unknown_attributes,omitempty" yaml:"unknown_attributes,omitempty"`
	Hardware  *hwinfo.Info `json:"hardware,omitempty" yaml:"hardware,omitempty"`
}

func viewOf(l *link.Link) linkView {
	v := linkView{
		Index:     l.Index,
		Name:      l.Name,
		Kind:      l.Kind(),
		MTU:       l.MTU,
		TxQLen:    l.TxQLen,
		Link:      l.Link,
		Master:    l.Master,
		OperState: l.OperState.String(),
		Alias:     l.Alias,
		Flags:     l.Flags.Active(),
	}
	if l.LinkInfo != nil {
		v.SlaveKind = l.LinkInfo.SlaveKind
	}
	if len(l.HardwareAddr) > 0 {
		v.Address = l.HardwareAddr.String()
	}
	if len(l.Broadcast) > 0 {
		v.Broadcast = l.Broadcast.String()
	}
	for code := range l.Unknown {
		v.Unknown = append(v.Unknown, code)
	}
	sort.Slice(v.Unknown, func(i, j int) bool { return v.Unknown[i] < v.Unknown[j] })
	return v
}

func checkFormat(format string, allowed ...string) error {
	for _, f := range allowed {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("unknown output format %q (want %s)", format, strings.Join(allowed, ", "))
}

// encode writes v as JSON or YAML.
func encode(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(v)
	}
	return fmt.Errorf("cannot encode as %q", format)
}

// renderTable draws the link list.
func renderTable(views []linkView) string {
	headers := []string{"INDEX", "NAME", "KIND", "MTU", "STATE", "ADDRESS", "MASTER", "FLAGS"}
	rows := make([][]string, 0, len(views))
	for _, v := range views {
		master := ""
		if v.Master != 0 {
			master = strconv.FormatUint(uint64(v.Master), 10)
		}
		rows = append(rows, []string{
			strconv.Itoa(int(v.Index)),
			v.Name,
			v.Kind,
			strconv.FormatUint(uint64(v.MTU), 10),
			tui.State(v.OperState),
			v.Address,
			master,
			shortFlags(v.Flags),
		})
	}
	return tui.Table(headers, rows)
}

// shortFlags drops the IFF_ prefix for compact display.
func shortFlags(flags []string) string {
	out := make([]string, len(flags))
	for i, f := range flags {
		out[i] = strings.TrimPrefix(f, "IFF_")
	}
	return strings.Join(out, ",")
}

// describe renders a link as stable "key: value" lines. It is the text form
// of "show" and the input to the before/after diff of "set".
func describe(v linkView) string {
	var b strings.Builder
	line := func(key, val string) {
		if val != "" {
			fmt.Fprintf(&b, "%-10s %s\n", key+":", val)
		}
	}
	num := func(n uint32) string {
		if n == 0 {
			return ""
		}
		return strconv.FormatUint(uint64(n), 10)
	}

	line("index", strconv.Itoa(int(v.Index)))
	line("name", v.Name)
	line("kind", v.Kind)
	line("slave", v.SlaveKind)
	line("mtu", num(v.MTU))
	line("txqlen", num(v.TxQLen))
	line("address", v.Address)
	line("broadcast", v.Broadcast)
	line("link", num(v.Link))
	line("master", num(v.Master))
	line("operstate", v.OperState)
	line("alias", v.Alias)
	line("flags", strings.Join(v.Flags, " "))
	if len(v.Unknown) > 0 {
		codes := make([]string, len(v.Unknown))
		for i, c := range v.Unknown {
			codes[i] = strconv.Itoa(int(c))
		}
		line("unmapped", strings.Join(codes, " "))
	}
	if hw := v.Hardware; hw != nil {
		line("driver", hw.Driver)
		line("firmware", hw.Firmware)
		line("bus", hw.BusInfo)
		if hw.Speed > 0 {
			line("speed", fmt.Sprintf("%d Mb/s %s", hw.Speed, hw.Duplex))
		}
	}
	return b.String()
}

// diffViews returns a unified diff of two link descriptions, or "" when
// they are identical.
func diffViews(before, after linkView) string {
	a, b := describe(before), describe(after)
	if a == b {
		return ""
	}
	text, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(a),
		B:        difflib.SplitLines(b),
		FromFile: "before",
		ToFile:   "after",
		Context:  1,
	})
	return text
}
