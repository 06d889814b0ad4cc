// Package report summarizes a persisted download dataset per distribution
// channel. It consumes logparse.Dataset records as-is: everything here
// assumes the ingestion engine already filtered, sorted, deduplicated, and
// normalized them, and it never goes back to the raw logs.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/rendinam/logparse"
)

// TitleCount is the download total of one software title within a channel,
// split by requester class.
type TitleCount struct {
	Name    string
	Total   int
	Onsite  int
	Offsite int
	Infra   int
}

// ChannelSummary holds the per-channel download statistics.
type ChannelSummary struct {
	Channel     string
	Start, End  time.Time
	DaysElapsed int
	Downloads   int
	Bytes       int64
	UniqueHosts int
	UniquePkgs  int
	Onsite      int
	Offsite     int
	Infra       int
	Titles      []TitleCount
}

// ParseWindow parses a "YYYY.MM.DD-YYYY.MM.DD" date window.
func ParseWindow(window string) (start, end time.Time, err error) {
	parts := strings.SplitN(window, "-", 2)
	if len(parts) != 2 {
		return start, end, errors.Errorf("bad window %q, want YYYY.MM.DD-YYYY.MM.DD", window)
	}
	start, err = time.Parse("2006.01.02", parts[0])
	if err != nil {
		return start, end, errors.Wrapf(err, "bad window start %q", parts[0])
	}
	end, err = time.Parse("2006.01.02", parts[1])
	if err != nil {
		return start, end, errors.Wrapf(err, "bad window end %q", parts[1])
	}
	return start, end, nil
}

// FilterWindow keeps the records whose timestamp's calendar date falls within
// [start, end].
func FilterWindow(records []logparse.TransactionRecord, start, end time.Time) []logparse.TransactionRecord {
	out := make([]logparse.TransactionRecord, 0, len(records))
	for _, r := range records {
		day := time.Date(r.Timestamp.Year(), r.Timestamp.Month(), r.Timestamp.Day(), 0, 0, 0, 0, time.UTC)
		if day.Before(start) || day.After(end) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Summarize computes per-channel summaries over records, classified per cfg.
// Channels come back in sorted name order.
func Summarize(records []logparse.TransactionRecord, cfg Config) []ChannelSummary {
	byChannel := make(map[string][]logparse.TransactionRecord)
	for _, r := range records {
		byChannel[r.Channel()] = append(byChannel[r.Channel()], r)
	}
	channels := make([]string, 0, len(byChannel))
	for ch := range byChannel {
		channels = append(channels, ch)
	}
	sort.Strings(channels)

	summaries := make([]ChannelSummary, 0, len(channels))
	for _, ch := range channels {
		summaries = append(summaries, summarizeChannel(ch, byChannel[ch], cfg))
	}
	return summaries
}

func summarizeChannel(channel string, records []logparse.TransactionRecord, cfg Config) ChannelSummary {
	cs := ChannelSummary{
		Channel:   channel,
		Downloads: len(records),
	}
	hosts := make(map[string]struct{})
	paths := make(map[string]struct{})
	titles := make(map[string]*TitleCount)

	for _, r := range records {
		if cs.Start.IsZero() || r.Timestamp.Before(cs.Start) {
			cs.Start = r.Timestamp
		}
		if r.Timestamp.After(cs.End) {
			cs.End = r.Timestamp
		}
		cs.Bytes += r.Size
		hosts[r.ClientAddr] = struct{}{}
		paths[r.RequestPath] = struct{}{}

		tc, ok := titles[r.PackageName]
		if !ok {
			tc = &TitleCount{Name: r.PackageName}
			titles[r.PackageName] = tc
		}
		tc.Total++
		// Infrastructure hosts are on-site by address but reported as their
		// own class.
		switch {
		case cfg.infrastructure(r.ClientAddr):
			tc.Infra++
			cs.Infra++
		case cfg.onsite(r.ClientAddr):
			tc.Onsite++
			cs.Onsite++
		default:
			tc.Offsite++
			cs.Offsite++
		}
	}
	cs.UniqueHosts = len(hosts)
	cs.UniquePkgs = len(paths)

	cs.DaysElapsed = int(cs.End.Sub(cs.Start).Hours()/24) + 1
	if cs.DaysElapsed < 1 {
		cs.DaysElapsed = 1
	}

	cs.Titles = make([]TitleCount, 0, len(titles))
	for _, tc := range titles {
		cs.Titles = append(cs.Titles, *tc)
	}
	sort.Slice(cs.Titles, func(i, j int) bool {
		if cs.Titles[i].Total != cs.Titles[j].Total {
			return cs.Titles[i].Total > cs.Titles[j].Total
		}
		return cs.Titles[i].Name < cs.Titles[j].Name
	})
	return cs
}

// Print writes the channel summaries in the traditional text layout.
func Print(w io.Writer, summaries []ChannelSummary) {
	total := 0
	for _, cs := range summaries {
		total += cs.Downloads
	}
	fmt.Fprintf(w, "TOTAL downloads = %d\n", total)

	for _, cs := range summaries {
		fmt.Fprintf(w, "\n\nSummary for channel: %s\n", cs.Channel)
		fmt.Fprintln(w, "-----------------------------")
		fmt.Fprintf(w, "Over the period %s to %s\n",
			cs.Start.Format("01-02-2006"), cs.End.Format("01-02-2006"))
		fmt.Fprintf(w, "%d days\n", cs.DaysElapsed)
		fmt.Fprintf(w, "Downloads: %d\n", cs.Downloads)
		fmt.Fprintf(w, "Average downloads per day: %d\n",
			(cs.Downloads+cs.DaysElapsed-1)/cs.DaysElapsed)
		fmt.Fprintf(w, "Data transferred: %.2f GB\n", float64(cs.Bytes)/1e9)
		fmt.Fprintf(w, "Unique hosts %d\n", cs.UniqueHosts)
		fmt.Fprintf(w, "Unique full package names %d\n", cs.UniquePkgs)
		fmt.Fprintf(w, "On-site downloads: %d  Off-site: %d  Infrastructure: %d\n",
			cs.Onsite, cs.Offsite, cs.Infra)
		fmt.Fprintf(w, "Number of unique %s titles downloaded: %d\n",
			cs.Channel, len(cs.Titles))
		for _, tc := range cs.Titles {
			fmt.Fprintf(w, "%s: %d\n", tc.Name, tc.Total)
		}
	}
}
