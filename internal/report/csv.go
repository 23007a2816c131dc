package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"

	"websim/internal/records"
)

// csvHeader is the output schema's column order: req_id, arrival_time,
// finish_time, latency_ms, status (spec.md §6's output contract).
var csvHeader = []string{"req_id", "arrival_time", "finish_time", "latency_ms", "status"}

// statusCode encodes a Status as the contract's 0=completed, 1=timeout,
// 2=dropped integer.
func statusCode(s records.Status) int {
	switch s {
	case records.StatusCompleted:
		return 0
	case records.StatusTimeout:
		return 1
	case records.StatusDropped:
		return 2
	default:
		panic(fmt.Sprintf("report: unknown status %q", s))
	}
}

// WriteCSV writes recs to path in the output contract's column order.
// The write is wrapped in a short exponential backoff retry: transient
// filesystem errors (a sweep writing dozens of per-run CSVs to a shared,
// possibly slow volume) are retried a handful of times before giving up.
func WriteCSV(path string, recs []records.RequestRecord) error {
	op := func() (struct{}, error) {
		return struct{}{}, writeCSVOnce(path, recs)
	}
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 50 * time.Millisecond
	bo.MaxInterval = 1 * time.Second

	_, err := backoff.Retry(context.Background(), op,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(5),
	)
	if err != nil {
		return fmt.Errorf("report: writing csv %s: %w", path, err)
	}
	return nil
}

func writeCSVOnce(path string, recs []records.RequestRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range recs {
		row := []string{
			strconv.Itoa(r.ReqID),
			strconv.FormatFloat(r.ArrivalTime, 'f', -1, 64),
			strconv.FormatFloat(r.FinishTime, 'f', -1, 64),
			strconv.FormatFloat(r.LatencyMS, 'f', -1, 64),
			strconv.Itoa(statusCode(r.Status)),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
