// Package metadata implements TRAC's versioned object model: tag headers,
// object definitions, schemas, selectors and the value codec used to move
// typed attributes on and off the wire.
package metadata

import "time"

// ObjectType discriminates the tagged union of object definitions.
type ObjectType string

const (
	ObjectTypeData    ObjectType = "DATA"
	ObjectTypeFile    ObjectType = "FILE"
	ObjectTypeStorage ObjectType = "STORAGE"
	ObjectTypeSchema  ObjectType = "SCHEMA"
	ObjectTypeModel   ObjectType = "MODEL"
	ObjectTypeFlow    ObjectType = "FLOW"
	ObjectTypeJob     ObjectType = "JOB"
	ObjectTypeCustom  ObjectType = "CUSTOM"
)

// TagHeader identifies a single committed tag: the (objectId, objectVersion,
// tagVersion) triple plus the wall-clock times of its two commits.
type TagHeader struct {
	ObjectType      ObjectType `json:"objectType"`
	ObjectID        string     `json:"objectId"`
	ObjectVersion   int64      `json:"objectVersion"`
	TagVersion      int64      `json:"tagVersion"`
	ObjectTimestamp time.Time  `json:"objectTimestamp"`
	TagTimestamp    time.Time  `json:"tagTimestamp"`
}

// Tag is the immutable metadata payload at a given header: definition plus
// the attribute bag layered on top of it.
type Tag struct {
	Header     TagHeader         `json:"header"`
	Definition ObjectDefinition  `json:"definition"`
	Attrs      map[string]*Value `json:"attrs"`
}

// ObjectDefinition is a tagged union over ObjectType; exactly one of the
// non-nil fields must match Header.ObjectType and callers must check the
// discriminator before dereferencing a variant.
type ObjectDefinition struct {
	ObjectType ObjectType       `json:"objectType"`
	Data       *DataDefinition  `json:"data,omitempty"`
	File       *FileDefinition  `json:"file,omitempty"`
	Storage    *StorageDefinition `json:"storage,omitempty"`
	Schema     *SchemaDefinition `json:"schema,omitempty"`
	Model      *OpaquePayload   `json:"model,omitempty"`
	Flow       *OpaquePayload   `json:"flow,omitempty"`
	Job        *OpaquePayload   `json:"job,omitempty"`
	Custom     *OpaquePayload   `json:"custom,omitempty"`
}

// OpaquePayload is the placeholder variant for MODEL/FLOW/JOB/CUSTOM objects,
// which the data core validates only for basic well-formedness.
type OpaquePayload struct {
	SchemaVersion int32          `json:"schemaVersion"`
	Fields        map[string]any `json:"fields"`
}

// DataDefinition describes a dataset: exactly one of Schema/SchemaID is set,
// StorageID points (by selector) at the backing STORAGE object, and Parts
// maps a partition key to its physical snapshot/delta chain.
type DataDefinition struct {
	Schema    *SchemaDefinition `json:"schema,omitempty"`
	SchemaID  *TagSelector      `json:"schemaId,omitempty"`
	StorageID TagSelector       `json:"storageId"`
	Parts     map[string]*Part  `json:"parts"`
}

// Part is one partition of a dataset: a sequence of snapshots, each of which
// may carry incremental deltas layered on top of it.
type Part struct {
	PartKey string `json:"partKey"`
	Snap    Snap   `json:"snap"`
}

// Snap is a single snapshot of a partition plus any deltas applied after it.
type Snap struct {
	SnapIndex int64   `json:"snapIndex"`
	Deltas    []Delta `json:"deltas"`
}

// Delta names the dataItem holding one incremental update to a snapshot.
type Delta struct {
	DeltaIndex int64  `json:"deltaIndex"`
	DataItem   string `json:"dataItem"`
}

// FileDefinition describes an opaque, byte-exact file object.
type FileDefinition struct {
	Name      string      `json:"name"`
	Extension string      `json:"extension"`
	MimeType  string      `json:"mimeType"`
	Size      int64       `json:"size"`
	StorageID TagSelector `json:"storageId"`
	DataItem  string      `json:"dataItem"`
}

// IncarnationStatus tracks whether a storage incarnation's bytes are still
// expected to exist in the backend.
type IncarnationStatus string

const (
	IncarnationAvailable IncarnationStatus = "AVAILABLE"
	IncarnationExpunged  IncarnationStatus = "EXPUNGED"
)

// CopyStatus tracks whether one physical copy of an incarnation is readable.
type CopyStatus string

const (
	CopyAvailable CopyStatus = "AVAILABLE"
	CopyExpunged  CopyStatus = "EXPUNGED"
)

// StorageDefinition records, for every dataItem path token ever written, the
// ordered history of incarnations (re-materializations over time) and, for
// each incarnation, the physical copies that realize it.
type StorageDefinition struct {
	DataItems map[string]*StorageItem `json:"dataItems"`
}

// StorageItem is the incarnation history of one dataItem.
type StorageItem struct {
	Incarnations []Incarnation `json:"incarnations"`
}

// Incarnation groups the copies written at one point in time.
type Incarnation struct {
	IncarnationIndex     int64             `json:"incarnationIndex"`
	IncarnationTimestamp time.Time         `json:"incarnationTimestamp"`
	IncarnationStatus    IncarnationStatus `json:"incarnationStatus"`
	Copies               []Copy            `json:"copies"`
}

// Copy is one physical realization of an incarnation in a storage backend.
type Copy struct {
	StorageKey    string     `json:"storageKey"`
	StoragePath   string     `json:"storagePath"`
	StorageFormat string     `json:"storageFormat"`
	CopyTimestamp time.Time  `json:"copyTimestamp"`
	CopyStatus    CopyStatus `json:"copyStatus"`
}

// FirstAvailableCopy returns the first AVAILABLE copy of the first AVAILABLE
// incarnation, or false if none exists (§3 invariant 9 violated).
func (s *StorageItem) FirstAvailableCopy() (Copy, bool) {
	for _, inc := range s.Incarnations {
		if inc.IncarnationStatus != IncarnationAvailable {
			continue
		}
		for _, c := range inc.Copies {
			if c.CopyStatus == CopyAvailable {
				return c, true
			}
		}
	}
	return Copy{}, false
}

// SchemaType enumerates the supported schema shapes; TABLE is the only one
// TRAC's data core interprets, others round-trip opaquely.
type SchemaType string

const (
	SchemaTypeTable SchemaType = "TABLE"
)

// SchemaDefinition is a standalone or embedded schema: an ordered list of
// typed, named fields.
type SchemaDefinition struct {
	SchemaType SchemaType  `json:"schemaType"`
	Table      TableSchema `json:"table"`
}

// TableSchema is the field list of a TABLE schema.
type TableSchema struct {
	Fields []FieldSchema `json:"fields"`
}

// BasicType enumerates the value types a FieldSchema or attribute can carry.
type BasicType string

const (
	TypeBoolean  BasicType = "BOOLEAN"
	TypeInteger  BasicType = "INTEGER"
	TypeFloat    BasicType = "FLOAT"
	TypeDecimal  BasicType = "DECIMAL"
	TypeString   BasicType = "STRING"
	TypeDate     BasicType = "DATE"
	TypeDatetime BasicType = "DATETIME"
)

// FieldSchema describes one column of a TABLE schema.
type FieldSchema struct {
	FieldName   string    `json:"fieldName"`
	FieldOrder  int32     `json:"fieldOrder"`
	FieldType   BasicType `json:"fieldType"`
	BusinessKey bool      `json:"businessKey,omitempty"`
	Categorical bool      `json:"categorical,omitempty"`
	Nullable    bool      `json:"nullable,omitempty"`
	Label       string    `json:"label,omitempty"`
	FormatCode  string    `json:"formatCode,omitempty"`
}

// TagOperation enumerates the kinds of attribute edits a TagUpdate may carry.
type TagOperation string

const (
	OpCreateAttr  TagOperation = "CREATE_ATTR"
	OpReplaceAttr TagOperation = "REPLACE_ATTR"
	OpAppendAttr  TagOperation = "APPEND_ATTR"
	OpDeleteAttr  TagOperation = "DELETE_ATTR"
	OpClearAll    TagOperation = "CLEAR_ALL_ATTR"
)

// TagUpdate is one requested edit to a tag's attribute bag.
type TagUpdate struct {
	AttrName  string       `json:"attrName"`
	Operation TagOperation `json:"operation"`
	Value     *Value       `json:"value,omitempty"`
}
