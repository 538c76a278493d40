// Package manifest turns the files of the manifest folder into the desired
// children of a namespace.
//
// The folder holds manifest files at its root and in per-kind subdirectories:
//
//	resources/
//	├── secrets/
//	│   ├── minio-artifact.yaml
//	│   └── registry-credentials.yaml
//	└── service-accounts/
//	    └── pipeline-runner.yaml
//
// Two strategies implement Source:
//
//   - StaticSource reads *.yaml/*.yml files and overwrites metadata.namespace.
//   - TemplateSource renders *.j2 files with the namespace context first.
//
// The number of files in a tracked subdirectory is the desired count for that
// kind, independently of how many objects the files contain. Files at the
// folder root are generated but not counted.
//
// Every call re-reads the folder. A file that fails to read, render or parse
// aborts the call with a *ParseError and no partial result.
package manifest
