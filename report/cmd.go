package report

import (
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/rendinam/logparse/store"
)

// Main contains the configuration for producing a download report from a
// persisted dataset.
type Main struct {
	Dataset string `help:"Path of the dataset file to report on."`
	Hosts   string `help:"YAML file with infrastructure_hosts and internal_host_specs."`
	Window  string `help:"Restrict to a date window: YYYY.MM.DD-YYYY.MM.DD. Empty means all data."`
	Store   string `help:"Dataset store backend: bolt or leveldb."`

	out io.Writer
}

// NewMain gets a new Main with the default configuration, writing to stdout.
func NewMain() *Main {
	return &Main{
		Dataset: "dataset.db",
		Store:   "bolt",
		out:     os.Stdout,
	}
}

// SetOutput redirects the report, mainly for tests.
func (m *Main) SetOutput(w io.Writer) { m.out = w }

// Run loads the dataset, summarizes it per channel, and prints the report.
func (m *Main) Run() error {
	// Without a hosts file every requester is classified off-site.
	var cfg Config
	if m.Hosts != "" {
		var err error
		cfg, err = LoadConfig(m.Hosts)
		if err != nil {
			return errors.Wrap(err, "loading hosts config")
		}
	}

	st, err := store.Open(m.Store, m.Dataset)
	if err != nil {
		return errors.Wrap(err, "opening dataset store")
	}
	defer st.Close()

	dataset, err := st.Load()
	if err != nil {
		return errors.Wrap(err, "loading dataset")
	}

	records := dataset.Records
	if m.Window != "" {
		start, end, err := ParseWindow(m.Window)
		if err != nil {
			return err
		}
		records = FilterWindow(records, start, end)
	}

	Print(m.out, Summarize(records, cfg))
	return nil
}
