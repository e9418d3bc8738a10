package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/cartacore/internal/loader"
	"github.com/MeKo-Tech/cartacore/internal/scenario"
	"github.com/MeKo-Tech/cartacore/internal/session"
	"github.com/MeKo-Tech/cartacore/internal/tilecache"
	"github.com/MeKo-Tech/cartacore/internal/wire"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a demo HTTP surface over a synthetic image cube",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "127.0.0.1:8080", "Listen address (host:port)")
	serveCmd.Flags().Int("width", 2048, "Synthetic image width in pixels")
	serveCmd.Flags().Int("height", 2048, "Synthetic image height in pixels")
	serveCmd.Flags().Int("channels", 10, "Number of synthetic channels")
	serveCmd.Flags().Int("stokes", 1, "Number of synthetic stokes planes")
	serveCmd.Flags().Int64("seed", 1337, "Deterministic seed for the synthetic image")
	serveCmd.Flags().Int("cache-capacity", 64, "Tile cache capacity (tiles)")
	serveCmd.Flags().Uint("precision", 16, "Fixed-precision quantizer bit width")

	mustBind := func(key, name string) {
		if err := viper.BindPFlag(key, serveCmd.Flags().Lookup(name)); err != nil {
			panic(fmt.Sprintf("failed to bind flag: %v", err))
		}
	}
	mustBind("serve.addr", "addr")
	mustBind("serve.width", "width")
	mustBind("serve.height", "height")
	mustBind("serve.channels", "channels")
	mustBind("serve.stokes", "stokes")
	mustBind("serve.seed", "seed")
	mustBind("serve.cache_capacity", "cache-capacity")
	mustBind("serve.precision", "precision")
}

func runServe(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	addr := viper.GetString("serve.addr")
	width := viper.GetInt("serve.width")
	height := viper.GetInt("serve.height")
	numChannels := viper.GetInt("serve.channels")
	numStokes := viper.GetInt("serve.stokes")
	seed := viper.GetInt64("serve.seed")
	cacheCapacity := viper.GetInt("serve.cache_capacity")
	precision := viper.GetUint("serve.precision")

	ldr := loader.NewSynthetic(int32(width), int32(height), numChannels, numStokes, seed)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/preview", previewHandler(ldr, cacheCapacity))

	mux.HandleFunc("/frame", func(w http.ResponseWriter, r *http.Request) {
		channel, stokes, err := parseFrameParams(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		cache, err := tilecache.New(ldr, cacheCapacity, channel, stokes)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		sink := &loggingSink{logger: logger}
		runner := scenario.NewRunner(cache, sink, logger)

		keys := tileGrid(int32(width), int32(height))
		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		if err := runner.ShowFrame(ctx, "demo", int32(channel), int32(stokes), keys, scenario.RenderOptions{
			CompressionType: wire.CompressionZFP,
			Precision:       precision,
		}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"channel":    channel,
			"stokes":     stokes,
			"tiles_sent": sink.tileCount,
			"tile_bytes": sink.totalBytes,
		})
	})

	logger.Info("demo server listening", "addr", addr, "width", width, "height", height, "channels", numChannels, "stokes", numStokes)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	return srv.ListenAndServe()
}

func parseFrameParams(r *http.Request) (channel, stokes int, err error) {
	channel, err = strconv.Atoi(r.URL.Query().Get("channel"))
	if err != nil {
		channel = 0
		err = nil
	}
	stokes, err = strconv.Atoi(r.URL.Query().Get("stokes"))
	if err != nil {
		stokes = 0
		err = nil
	}
	return channel, stokes, nil
}

// tileGrid partitions a width x height image into TileSize-aligned origins,
// matching the scenario caller's responsibility to compute valid keys
// (tilecache.Key's doc comment).
func tileGrid(width, height int32) []tilecache.Key {
	var keys []tilecache.Key
	for y := int32(0); y < height; y += tilecache.TileSize {
		for x := int32(0); x < width; x += tilecache.TileSize {
			keys = append(keys, tilecache.Key{OriginX: x, OriginY: y})
		}
	}
	return keys
}
