package metrics

import "github.com/prometheus/client_golang/prometheus"

// Keys for clone metrics.
const (
	ClonesTotalKey           = "rootforge_clones_total"
	CloneDurationSecondsKey  = "rootforge_clone_duration_seconds"
	FilesWrittenTotalKey     = "rootforge_files_written_total"
	BytesWrittenTotalKey     = "rootforge_bytes_written_total"
	MaterialsSkippedTotalKey = "rootforge_materials_skipped_total"
	BackfillGapsTotalKey     = "rootforge_backfill_gaps_total"
	RaceModelsCreatedKey     = "rootforge_race_models_created_total"
	BatchResetFilesTotalKey  = "rootforge_batch_reset_files_total"

	Fail = "fail"
	Ok   = "ok"
)

// Collectors for clone metrics.
var (
	ClonesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: ClonesTotalKey,
		Help: "Cumulative number of root clones.",
	}, []string{"status"})
	CloneDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name: CloneDurationSecondsKey,
		Help: "Time spent cloning a root.",
	}, []string{"status"})
	FilesWrittenTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: FilesWrittenTotalKey,
		Help: "Cumulative number of files written by clones.",
	}, []string{"kind"})
	BytesWrittenTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: BytesWrittenTotalKey,
		Help: "Cumulative number of rewritten model and material bytes.",
	})
	MaterialsSkippedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: MaterialsSkippedTotalKey,
		Help: "Cumulative number of materials skipped because they were missing or unreadable.",
	})
	BackfillGapsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: BackfillGapsTotalKey,
		Help: "Cumulative number of material set slots left without a material.",
	})
	RaceModelsCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: RaceModelsCreatedKey,
		Help: "Cumulative number of per-race models copied from another race.",
	})
	BatchResetFilesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: BatchResetFilesTotalKey,
		Help: "Cumulative number of files restored to their pre-batch state.",
	})
)

// CloneCollectors lists collectors used by clone commands.
func CloneCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		ClonesTotal,
		CloneDurationSeconds,
		FilesWrittenTotal,
		BytesWrittenTotal,
		MaterialsSkippedTotal,
		BackfillGapsTotal,
		RaceModelsCreatedTotal,
		BatchResetFilesTotal,
	}
}
