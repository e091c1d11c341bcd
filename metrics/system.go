package metrics

import (
	"runtime"
	"strconv"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/sirupsen/logrus"
)

// StartRuntimeCollector samples Go runtime memory and goroutine gauges on a
// fixed interval until the process exits.
func StartRuntimeCollector(interval time.Duration) {
	go func() {
		for {
			collectRuntimeMetrics()
			time.Sleep(interval)
		}
	}()
}

func collectRuntimeMetrics() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	MemoryStats.WithLabelValues("alloc").Set(float64(memStats.Alloc))
	MemoryStats.WithLabelValues("sys").Set(float64(memStats.Sys))
	MemoryStats.WithLabelValues("heap_alloc").Set(float64(memStats.HeapAlloc))
	MemoryStats.WithLabelValues("heap_sys").Set(float64(memStats.HeapSys))
	MemoryStats.WithLabelValues("heap_idle").Set(float64(memStats.HeapIdle))
	MemoryStats.WithLabelValues("heap_inuse").Set(float64(memStats.HeapInuse))

	GoroutineCount.Set(float64(runtime.NumGoroutine()))
}

// StartSystemCollector samples host-level CPU, disk, and load metrics on a
// fixed interval until the process exits.
func StartSystemCollector(interval time.Duration) {
	go func() {
		for {
			collectSystemMetrics()
			time.Sleep(interval)
		}
	}()
}

func collectSystemMetrics() {
	percents, err := cpu.Percent(0, true)
	if err != nil {
		logrus.WithError(err).Debug("cpu stats unavailable")
	} else {
		for core, percent := range percents {
			SystemCPUUsage.WithLabelValues(strconv.Itoa(core)).Set(percent)
		}
	}

	partitions, err := disk.Partitions(false)
	if err != nil {
		logrus.WithError(err).Debug("disk stats unavailable")
	} else {
		for _, partition := range partitions {
			usage, err := disk.Usage(partition.Mountpoint)
			if err != nil {
				continue
			}
			SystemDiskUsage.WithLabelValues(partition.Device, partition.Mountpoint, "used").Set(float64(usage.Used))
			SystemDiskUsage.WithLabelValues(partition.Device, partition.Mountpoint, "free").Set(float64(usage.Free))
			SystemDiskUsage.WithLabelValues(partition.Device, partition.Mountpoint, "total").Set(float64(usage.Total))
		}
	}

	avg, err := load.Avg()
	if err != nil {
		logrus.WithError(err).Debug("load stats unavailable")
		return
	}
	SystemLoadAverage.WithLabelValues("1min").Set(avg.Load1)
	SystemLoadAverage.WithLabelValues("5min").Set(avg.Load5)
	SystemLoadAverage.WithLabelValues("15min").Set(avg.Load15)
}
