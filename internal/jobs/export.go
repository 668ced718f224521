// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package jobs

import (
	"time"

	"github.com/ManuGH/hafeeds/internal/epg"
	xlog "github.com/ManuGH/hafeeds/internal/log"
)

// XMLTVExporter returns a publish listener that writes every published
// snapshot to path. Failures are logged; the snapshot stays published.
func XMLTVExporter(path string, names map[string]string, loc *time.Location) func(*epg.Snapshot) {
	logger := xlog.WithComponent("jobs")
	return func(snap *epg.Snapshot) {
		tv := epg.BuildXMLTV(snap, names, loc)
		if err := epg.WriteXMLTV(tv, path); err != nil {
			logger.Warn().Err(err).
				Str(xlog.FieldEvent, "xmltv.failed").
				Str(xlog.FieldPath, path).
				Msg("XMLTV export failed")
			return
		}
		logger.Info().
			Str(xlog.FieldEvent, "xmltv.success").
			Str(xlog.FieldPath, path).
			Int("channels", len(tv.Channels)).
			Int("programmes", len(tv.Programmes)).
			Msg("XMLTV export written")
	}
}
