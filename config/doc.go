// Package config builds loggers and handlers from a declarative document.
//
// A document is YAML, JSON or an already decoded map. It names formatters,
// filters and handlers by id and attaches them to loggers by name:
//
//	options:
//	  level: INFO
//	  capacity: 1024
//	formatters:
//	  - id: detailed
//	    kind: text
//	    include_caller: true
//	handlers:
//	  - id: app_file
//	    kind: rotating
//	    filename: /var/log/app.log
//	    max_bytes: 10485760
//	    backup_count: 5
//	    capacity: 512
//	    overflow: timeout
//	    block_timeout: 250ms
//	    formatter: detailed
//	  - id: collector
//	    kind: http
//	    url: https://logs.example.com/ingest
//	    encoding: json
//	    formatter: {kind: json}
//	loggers:
//	  - name: root
//	    handlers: [app_file]
//	  - name: app.web
//	    level: DEBUG
//	    handlers: [collector]
//
// Handler and formatter kinds are closed sets. Unknown ids and duplicate
// entries are reported as build errors before any handler is started.
package config
