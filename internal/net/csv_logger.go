package net

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// CSVLogger writes one "epoch,loss,time_seconds" row per epoch to W.
type CSVLogger struct {
	BaseCallback
	W io.Writer

	writer *csv.Writer
	start  time.Time
}

// NewCSVLogger creates a CSVLogger writing to w.
func NewCSVLogger(w io.Writer) *CSVLogger {
	return &CSVLogger{W: w}
}

func (c *CSVLogger) OnTrainBegin(*Network) error {
	c.writer = csv.NewWriter(c.W)
	c.start = time.Now()
	if err := c.writer.Write([]string{"epoch", "loss", "time_seconds"}); err != nil {
		return fmt.Errorf("csv logger: %w", err)
	}
	c.writer.Flush()
	return c.writer.Error()
}

func (c *CSVLogger) OnEpochEnd(epoch int, loss float64, _ *Network) error {
	if c.writer == nil {
		return nil
	}

	record := []string{
		strconv.Itoa(epoch),
		strconv.FormatFloat(loss, 'f', 6, 64),
		strconv.FormatFloat(time.Since(c.start).Seconds(), 'f', 2, 64),
	}
	if err := c.writer.Write(record); err != nil {
		return fmt.Errorf("csv logger: %w", err)
	}
	c.writer.Flush()
	return c.writer.Error()
}

func (c *CSVLogger) OnTrainEnd(*Network) error {
	if c.writer == nil {
		return nil
	}
	c.writer.Flush()
	err := c.writer.Error()
	c.writer = nil
	return err
}
