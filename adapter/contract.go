package adapter

import (
	"context"

	"github.com/nuvix/sqldoc/query"
)

// Config enumerates the configuration options of §4.1.
type Config struct {
	SharedTables      bool
	TenantID          *int64
	Database          string // schema (Postgres) / database (MariaDB)
	Prefix            string
	MaxVarCharLimit   int // 0 means backend default
	PreserveDates     bool
	NamedPlaceholders bool

	Host     string
	Port     int
	User     string
	Password string
}

// AttributeType is the recognized logical attribute type set of §3.
type AttributeType string

const (
	TypeString       AttributeType = "string"
	TypeInteger      AttributeType = "integer"
	TypeFloat        AttributeType = "float"
	TypeBoolean      AttributeType = "boolean"
	TypeDatetime     AttributeType = "datetime"
	TypeRelationship AttributeType = "relationship"
)

// Attribute is the attribute descriptor of §3.
type Attribute struct {
	ID        string
	Type      AttributeType
	Size      int  // string length, or integer byte-width (4 or 8)
	Signed    bool // integer: false => UNSIGNED
	Array     bool
	Required  bool
	Default   any
}

// IndexType is the fixed enumeration of §3.
type IndexType string

const (
	IndexKey      IndexType = "key"
	IndexUnique   IndexType = "unique"
	IndexFulltext IndexType = "fulltext"
)

// Index is the index descriptor of §3.
type Index struct {
	Name       string
	Type       IndexType
	Attributes []string
	Lengths    []int
	Orders     []string
}

// RelationshipType is one of the four kinds of §4.8.
type RelationshipType string

const (
	OneToOne   RelationshipType = "oneToOne"
	OneToMany  RelationshipType = "oneToMany"
	ManyToOne  RelationshipType = "manyToOne"
	ManyToMany RelationshipType = "manyToMany"
)

// RelationshipSide distinguishes which collection owns the materialized
// column in a relationship (§4.8).
type RelationshipSide string

const (
	SideParent RelationshipSide = "parent"
	SideChild  RelationshipSide = "child"
)

// PermissionsByType groups the permission rows a document carries, indexed by
// action, as produced by grouping a Document's raw Permissions strings.
type PermissionsByType map[string][]string

// Adapter is the backend-neutral contract of §4.1. Every method that talks
// to the network takes a context for cancellation (§5's "no in-process
// deadline propagation" notwithstanding — ctx still bounds the call, even
// though statement-level timeouts are a separate transform-pipeline
// concern).
type Adapter interface {
	// Lifecycle
	Init(ctx context.Context) error
	Close() error
	Ping(ctx context.Context) error
	IsInitialized() bool
	GetClient() any

	// Schema admin
	Create(ctx context.Context, name string) error
	Drop(ctx context.Context, name string) error
	Exists(ctx context.Context, name string, collection string) (bool, error)
	Use(ctx context.Context, name string) error

	// Collection admin
	CreateCollection(ctx context.Context, name string, attrs []Attribute, indexes []Index, ifExists bool) error
	DropCollection(ctx context.Context, name string, ifExists bool) error

	// Attribute admin
	CreateAttribute(ctx context.Context, collection string, attr Attribute) error
	UpdateAttribute(ctx context.Context, collection string, oldID string, attr Attribute) error
	DeleteAttribute(ctx context.Context, collection string, id string) error
	RenameAttribute(ctx context.Context, collection, oldName, newName string) error

	// Relationship admin
	CreateRelationship(ctx context.Context, collection, related string, relType RelationshipType, twoWay bool, id, twoWayKey string) error
	UpdateRelationship(ctx context.Context, collection string, relType RelationshipType, oldKey, newKey, newTwoWayKey string) error
	DeleteRelationship(ctx context.Context, collection, related string, relType RelationshipType, side RelationshipSide, key, twoWayKey string) error

	// Index admin
	CreateIndex(ctx context.Context, collection string, index Index) error
	DeleteIndex(ctx context.Context, collection, name string) error
	RenameIndex(ctx context.Context, collection, oldName, newName string) error

	// Document CRUD
	CreateDocument(ctx context.Context, collection string, doc *Document) (*Document, error)
	CreateDocuments(ctx context.Context, collection string, docs []*Document, batchSize int) ([]*Document, error)
	UpdateDocument(ctx context.Context, collection string, doc *Document) (*Document, error)
	UpdateDocuments(ctx context.Context, collection string, ids []string, patch map[string]AttributeValue, permissions []string) (int64, error)
	IncreaseDocumentAttribute(ctx context.Context, collection, id, attr string, delta float64, min, max *float64) (bool, error)
	DeleteDocument(ctx context.Context, collection, id string) error
	DeleteDocuments(ctx context.Context, collection string, ids []string) (int64, error)

	// Read
	Find(ctx context.Context, collection string, opts FindOptions) ([]*Document, error)
	Count(ctx context.Context, collection string, opts FindOptions, max int) (int64, error)
	Sum(ctx context.Context, collection, attr string, opts FindOptions, max int) (float64, error)
	GetDocument(ctx context.Context, collection, id string, opts FindOptions, forUpdate bool) (*Document, error)

	// Introspection
	GetSizeOfCollection(ctx context.Context, collection string) (int64, error)
	GetSizeOfCollectionOnDisk(ctx context.Context, collection string) (int64, error)
	GetConnectionID(ctx context.Context) (string, error)
	GetSupportForCastIndexArray() bool
	GetMaxVarcharLength() int
	GetMaxIndexLength() int

	// Hooks
	Before(event, name string, cb func(sql string) string)
	SetTimeout(ms int, event string)
	ClearTimeout(event string)
	SetMetadata(key, value string)
	ResetMetadata()
}

// FindOptions bundles the inputs of §4.1's find/count/sum/getDocument.
type FindOptions struct {
	Queries         []*query.Query
	Selections      []string
	Limit           int
	Offset          int
	OrderAttributes []string
	OrderTypes      []string
	Cursor          *Document
	CursorDirection string // "after" | "before"
	ForPermission   string // defaults to "read"
	Roles           []string
}
