package stats

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gosuri/uilive"
	"github.com/gosuri/uitable"
)

// Printer rewrites a stats table in place on the terminal. Run it in its
// own goroutine and close StopChan to stop it; DoneChan is closed once the
// terminal has been released.
type Printer struct {
	StopChan chan struct{}
	DoneChan chan struct{}
}

// NewPrinter returns a live stats printer.
func NewPrinter() *Printer {
	return &Printer{
		StopChan: make(chan struct{}),
		DoneChan: make(chan struct{}),
	}
}

// Run refreshes the table every second until StopChan is closed.
func (p *Printer) Run() {
	writer := uilive.New()
	writer.Start()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-p.StopChan:
			writer.Stop()
			close(p.DoneChan)
			return
		case <-ticker.C:
			fmt.Fprintln(writer, renderTable())
		}
	}
}

func renderTable() string {
	table := uitable.New()
	table.MaxColWidth = 80
	table.Wrap = true

	errState := "-"
	if GetErrorState() {
		errState = "ERROR"
	}

	table.AddRow("SESSION FILE", GetSessionFile())
	table.AddRow("SAMPLES BUFFERED", globalStats.samplesBuffered.Load())
	table.AddRow("SAMPLES/MIN", globalStats.sampleRate.Rate())
	table.AddRow("BUFFER FILL", humanize.Bytes(uint64(globalStats.bufferFill.Load())))
	table.AddRow("FLUSHES", globalStats.flushes.Load())
	table.AddRow("BYTES FLUSHED", humanize.Bytes(globalStats.bytesFlushed.Load()))
	table.AddRow("OVERFLOWS", globalStats.overflows.Load())
	table.AddRow("FLUSH ERRORS", globalStats.flushErrors.Load())
	table.AddRow("SAMPLES DROPPED", globalStats.samplesDropped.Load())
	table.AddRow("STATUS", errState)

	return table.String()
}
