package docnode

// ImportRecord is one name brought into a module's scope by an import
// statement. Namespace imports bind the whole source module under LocalName.
type ImportRecord struct {
	LocalName string `json:"local_name"`
	Imported  string `json:"imported"` // original name; "default" for default imports
	Specifier string `json:"specifier"`
	Namespace bool   `json:"namespace,omitempty"`
	Span      Span   `json:"span"`
}

// ExportRecordKind classifies a raw export statement before resolution.
type ExportRecordKind int

const (
	// ExportLocal exports a declaration made in the same module.
	ExportLocal ExportRecordKind = iota
	// ExportNamed re-exports a (possibly renamed) binding from another module.
	ExportNamed
	// ExportWildcard forwards all resolved exports of another module.
	ExportWildcard
)

func (k ExportRecordKind) String() string {
	switch k {
	case ExportLocal:
		return "local"
	case ExportNamed:
		return "named"
	case ExportWildcard:
		return "wildcard"
	default:
		return "unknown"
	}
}

// ExportRecord is one edge of the re-export graph as written in source.
// The export resolver collapses these into final bindings.
type ExportRecord struct {
	Kind      ExportRecordKind `json:"kind"`
	Exported  string           `json:"exported,omitempty"` // name seen by importers
	Original  string           `json:"original,omitempty"` // name in the source module, for re-exports
	Specifier string           `json:"specifier,omitempty"`
	Span      Span             `json:"span"`
}

// DiagKind classifies non-fatal findings attached to modules, bindings, or
// references.
type DiagKind int

const (
	DiagParseError DiagKind = iota
	DiagResolutionError
	DiagReExportCycle
	DiagAmbiguousExport
	DiagAmbiguousReference
)

func (k DiagKind) String() string {
	switch k {
	case DiagParseError:
		return "parse-error"
	case DiagResolutionError:
		return "resolution-error"
	case DiagReExportCycle:
		return "reexport-cycle"
	case DiagAmbiguousExport:
		return "ambiguous-export"
	case DiagAmbiguousReference:
		return "ambiguous-reference"
	default:
		return "unknown"
	}
}

// Diagnostic is a non-fatal finding. The engine never aborts a build over a
// single module or symbol; diagnostics ride along to the final output.
type Diagnostic struct {
	Kind    DiagKind `json:"kind"`
	Span    Span     `json:"span"`
	Message string   `json:"message"`
}

func (d Diagnostic) String() string {
	return d.Kind.String() + " at " + d.Span.String() + ": " + d.Message
}
