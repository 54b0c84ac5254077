// Demonstrates multi-source settings resolution with typed accessors.
package main

import (
	"fmt"
	"log"
	"time"

	"settings"
)

type serverConfig struct {
	Host    string        `settings:"host"`
	Port    int           `settings:"port"`
	Debug   bool          `settings:"debug"`
	Timeout time.Duration `settings:"timeout"`
	Tags    []string      `settings:"tags"`
}

func main() {
	// The environment (and SETTINGS_URI indirection) is searched first by
	// default, so exported variables override everything below.
	s, err := settings.New(
		settings.Map(map[string]any{
			"host":    "localhost",
			"port":    "8080",
			"debug":   "true",
			"timeout": "30s",
			"tags":    "api, web",
			"workers": "0.5n",
		}),
	)
	if err != nil {
		log.Fatal(err)
	}

	host, _ := s.String("host")
	port, _ := s.Int64("port")
	debug, _ := s.Bool("debug")
	workers, _ := s.NJobs("workers")
	tags, _ := s.List("tags")

	fmt.Printf("host=%s port=%d debug=%v workers=%d tags=%v\n",
		host, port, debug, workers, tags)

	var cfg serverConfig
	if err := s.Scan(&cfg); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("scanned: %+v\n", cfg)

	for _, d := range s.Diagnostics() {
		fmt.Printf("diagnostic: %s %s\n", d.Kind, d.Message)
	}
}
