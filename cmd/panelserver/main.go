// Command panelserver serves a generated site folder over HTTP or HTTPS.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ancientlore/cachefs"
	"github.com/charmbracelet/lipgloss"
	"github.com/facebookgo/flagenv"
	"github.com/golang/groupcache"

	"github.com/ancientlore/panels/web"
)

var (
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	alertStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func main() {
	// Setup flags
	var (
		fPort              = flag.Int("port", 0, "Port to listen on; 0 means 80, or 443 with HTTPS.")
		fDir               = flag.String("dir", "public", "Folder to serve.")
		fCORS              = flag.Bool("cors", false, "Add CORS headers allowing any origin.")
		fGzip              = flag.Bool("gz", false, "Serve .gz files when present and compress other responses.")
		fCert              = flag.String("cert", "", "TLS certificate file; enables HTTPS together with -key.")
		fKey               = flag.String("key", "", "TLS key file; enables HTTPS together with -cert.")
		fReadTimeout       = flag.Duration("readtimeout", 10*time.Second, "HTTP server read timeout.")
		fReadHeaderTimeout = flag.Duration("readheadertimeout", 5*time.Second, "HTTP server read header timeout.")
		fWriteTimeout      = flag.Duration("writetimeout", 30*time.Second, "HTTP server write timeout.")
		fCacheSize         = flag.Int64("cachesize", 10*1024*1024, "Bytes of file cache; 0 disables caching.")
		fCacheDuration     = flag.Duration("cacheduration", 10*time.Second, "How long cached files live.")
		fMetrics           = flag.Bool("metrics", false, "Expose Prometheus metrics at /metrics.")
	)
	flag.Parse()
	flagenv.Parse()

	useTLS := *fCert != "" && *fKey != ""
	port := *fPort
	if port == 0 {
		port = 80
		if useTLS {
			port = 443
		}
	}

	fi, err := os.Stat(*fDir)
	if err != nil || !fi.IsDir() {
		log.Printf("Cannot serve %q: not a folder", *fDir)
		os.Exit(1)
	}

	// Create the file system, cached unless disabled
	var fsys fs.FS = os.DirFS(*fDir)
	if *fCacheSize > 0 {
		groupcache.RegisterPeerPicker(func() groupcache.PeerPicker { return groupcache.NoPeers{} })
		fsys = cachefs.New(fsys, &cachefs.Config{GroupName: "panels", SizeInBytes: *fCacheSize, Duration: *fCacheDuration})
	}

	// Setup handlers
	opts := web.Options{
		CORS: *fCORS,
		Gzip: *fGzip,
		Log:  os.Stdout,
	}
	mux := http.NewServeMux()
	if *fMetrics {
		opts.Metrics = web.NewMetrics()
		mux.Handle("/metrics", opts.Metrics.Exposer())
	}
	mux.Handle("/", web.NewHandler(fsys, opts))

	// Create HTTP server
	var srv = http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadTimeout:       *fReadTimeout,
		WriteTimeout:      *fWriteTimeout,
		ReadHeaderTimeout: *fReadHeaderTimeout,
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			log.Print(alertStyle.Render(fmt.Sprintf("Port %d already in use!", port)))
		} else {
			log.Print(alertStyle.Render("Error: " + err.Error()))
		}
		os.Exit(1)
	}

	scheme := "http"
	if useTLS {
		scheme = "https"
	}
	log.Printf("%s %s://%s:%d", labelStyle.Render("Server listening at:"), scheme, localIP(), port)
	log.Printf("%s %s", labelStyle.Render("Public directory at:"), *fDir)
	var enabled []string
	if *fGzip {
		enabled = append(enabled, "gzip")
	}
	if *fCORS {
		enabled = append(enabled, "CORS")
	}
	if useTLS {
		enabled = append(enabled, "HTTPS")
	}
	if *fMetrics {
		enabled = append(enabled, "metrics")
	}
	if len(enabled) > 0 {
		log.Printf("%s %s", labelStyle.Render("Options:"), strings.Join(enabled, " "))
	}
	log.Printf("Press %s to exit", alertStyle.Render("Ctrl+C"))

	// Create signal handler for graceful shutdown
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("HTTP server Shutdown: %v", err)
		}
	}()

	if useTLS {
		err = srv.ServeTLS(ln, *fCert, *fKey)
	} else {
		err = srv.Serve(ln)
	}
	if !errors.Is(err, http.ErrServerClosed) {
		log.Printf("HTTP server: %v", err)
		os.Exit(1)
	}
	log.Print("Goodbye.")
}

// localIP returns the first non-loopback IPv4 address of this machine.
func localIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "localhost"
	}
	for _, addr := range addrs {
		if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			if ip4 := ipnet.IP.To4(); ip4 != nil {
				return ip4.String()
			}
		}
	}
	return "localhost"
}
