// Package options binds the descriptor machinery to a representative
// slice of an embedded key-value store's option surface (spec §4
// expansion "Option surface"): DBOptions, ColumnFamilyOptions, and the
// CompressionOptions/TableOptions structs nested inside the latter.
//
// Grounded on the teacher's core.Table/core.MySQLTableOptions/
// core.TimestampsConfig tagged-struct shape (one Go struct per logical
// option group, a nested struct for a cohesive sub-group).
package options

import (
	"ckv/internal/codec"
	"ckv/internal/configurable"
	"ckv/internal/ctxopt"
	"ckv/internal/descriptor"
)

// Domain enum values for InfoLogLevel (a user-supplied Enum, not one of
// the fixed domain-enum tags).
const (
	InfoLogDebug int64 = iota
	InfoLogInfo
	InfoLogWarn
	InfoLogError
	InfoLogFatal
)

var infoLogLevelNames = map[string]int64{
	"DEBUG": InfoLogDebug,
	"INFO":  InfoLogInfo,
	"WARN":  InfoLogWarn,
	"ERROR": InfoLogError,
	"FATAL": InfoLogFatal,
}

// Domain enum values for CompressionType.
const (
	CompressionNone int64 = iota
	CompressionSnappy
	CompressionZlib
	CompressionBZip2
	CompressionLZ4
	CompressionLZ4HC
	CompressionXPress
	CompressionZSTD
)

var compressionTypeNames = map[string]int64{
	"kNoCompression":     CompressionNone,
	"kSnappyCompression": CompressionSnappy,
	"kZlibCompression":   CompressionZlib,
	"kBZip2Compression":  CompressionBZip2,
	"kLZ4Compression":    CompressionLZ4,
	"kLZ4HCCompression":  CompressionLZ4HC,
	"kXPressCompression": CompressionXPress,
	"kZSTD":              CompressionZSTD,
}

// Domain enum values for ChecksumType.
const (
	ChecksumCRC32C int64 = iota
	ChecksumXXHash
	ChecksumXXHash64
)

var checksumTypeNames = map[string]int64{
	"kCRC32c":   ChecksumCRC32C,
	"kxxHash":   ChecksumXXHash,
	"kxxHash64": ChecksumXXHash64,
}

// Domain enum values for CompactionStyle.
const (
	CompactionStyleLevel int64 = iota
	CompactionStyleUniversal
	CompactionStyleFIFO
	CompactionStyleNone
)

var compactionStyleNames = map[string]int64{
	"kCompactionStyleLevel":     CompactionStyleLevel,
	"kCompactionStyleUniversal": CompactionStyleUniversal,
	"kCompactionStyleFIFO":      CompactionStyleFIFO,
	"kCompactionStyleNone":      CompactionStyleNone,
}

// Domain enum values for CompactionPri.
const (
	CompactionPriByCompensatedSize int64 = iota
	CompactionPriOldestLargestSeqFirst
	CompactionPriOldestSmallestSeqFirst
	CompactionPriMinOverlappingRatio
)

var compactionPriNames = map[string]int64{
	"kByCompensatedSize":      CompactionPriByCompensatedSize,
	"kOldestLargestSeqFirst":  CompactionPriOldestLargestSeqFirst,
	"kOldestSmallestSeqFirst": CompactionPriOldestSmallestSeqFirst,
	"kMinOverlappingRatio":    CompactionPriMinOverlappingRatio,
}

// Domain enum values for CompactionStopStyle.
const (
	CompactionStopStyleSimilarSize int64 = iota
	CompactionStopStyleTotalSize
)

var compactionStopStyleNames = map[string]int64{
	"kCompactionStopStyleSimilarSize": CompactionStopStyleSimilarSize,
	"kCompactionStopStyleTotalSize":   CompactionStopStyleTotalSize,
}

// Domain enum values for EncodingType (block-format key encoding).
const (
	EncodingTypePlain int64 = iota
	EncodingTypePrefix
)

var encodingTypeNames = map[string]int64{
	"kPlain":  EncodingTypePlain,
	"kPrefix": EncodingTypePrefix,
}

// RateLimiter is DBOptions' nested struct describing an external rate
// limiter's construction parameters.
type RateLimiter struct {
	RateBytesPerSec uint64
	RefillPeriodUs  uint64
}

// RateLimiterTable is the Struct sub-table for RateLimiter.
var RateLimiterTable = func() *descriptor.Table {
	t := descriptor.NewTable()
	rateGet, rateSet := descriptor.Field[RateLimiter, uint64](func(r *RateLimiter) *uint64 { return &r.RateBytesPerSec })
	t.Add("rate_bytes_per_sec", &descriptor.Descriptor{Tag: descriptor.Size, Get: rateGet, Set: rateSet})
	refillGet, refillSet := descriptor.Field[RateLimiter, uint64](func(r *RateLimiter) *uint64 { return &r.RefillPeriodUs })
	t.Add("refill_period_us", &descriptor.Descriptor{Tag: descriptor.UInt64, Get: refillGet, Set: refillSet})
	return t
}()

// CompressionOptions is ColumnFamilyOptions' nested compression-tuning
// struct.
type CompressionOptions struct {
	WindowBits         int32
	Level              int32
	Strategy           int32
	ZstdMaxTrainBytes  uint64
}

// CompressionOptionsTable is the Struct sub-table for CompressionOptions.
var CompressionOptionsTable = func() *descriptor.Table {
	t := descriptor.NewTable()
	wGet, wSet := descriptor.Field[CompressionOptions, int32](func(c *CompressionOptions) *int32 { return &c.WindowBits })
	t.Add("window_bits", &descriptor.Descriptor{Tag: descriptor.Int32, Get: wGet, Set: wSet})
	lGet, lSet := descriptor.Field[CompressionOptions, int32](func(c *CompressionOptions) *int32 { return &c.Level })
	t.Add("level", &descriptor.Descriptor{Tag: descriptor.Int32, Get: lGet, Set: lSet})
	sGet, sSet := descriptor.Field[CompressionOptions, int32](func(c *CompressionOptions) *int32 { return &c.Strategy })
	t.Add("strategy", &descriptor.Descriptor{Tag: descriptor.Int32, Get: sGet, Set: sSet})
	zGet, zSet := descriptor.Field[CompressionOptions, uint64](func(c *CompressionOptions) *uint64 { return &c.ZstdMaxTrainBytes })
	t.Add("zstd_max_train_bytes", &descriptor.Descriptor{Tag: descriptor.Size, Get: zGet, Set: zSet})
	return t
}()

// TableOptions is ColumnFamilyOptions' nested block-format struct.
type TableOptions struct {
	BlockSize    uint64
	Checksum     int64
	NoBlockCache bool
	IndexType    int64
}

// TableOptionsTable is the Struct sub-table for TableOptions.
var TableOptionsTable = func() *descriptor.Table {
	t := descriptor.NewTable()
	bGet, bSet := descriptor.Field[TableOptions, uint64](func(o *TableOptions) *uint64 { return &o.BlockSize })
	t.Add("block_size", &descriptor.Descriptor{Tag: descriptor.Size, Get: bGet, Set: bSet})
	cNames, cValues := descriptor.NewEnum(checksumTypeNames)
	cGet, cSet := descriptor.Field[TableOptions, int64](func(o *TableOptions) *int64 { return &o.Checksum })
	t.Add("checksum", &descriptor.Descriptor{Tag: descriptor.ChecksumType, Get: cGet, Set: cSet, EnumNames: cNames, EnumValues: cValues})
	nGet, nSet := descriptor.Field[TableOptions, bool](func(o *TableOptions) *bool { return &o.NoBlockCache })
	t.Add("no_block_cache", &descriptor.Descriptor{Tag: descriptor.Boolean, Get: nGet, Set: nSet})
	iNames, iValues := descriptor.NewEnum(encodingTypeNames)
	iGet, iSet := descriptor.Field[TableOptions, int64](func(o *TableOptions) *int64 { return &o.IndexType })
	t.Add("index_type", &descriptor.Descriptor{Tag: descriptor.EncodingType, Get: iGet, Set: iSet, EnumNames: iNames, EnumValues: iValues})
	return t
}()

// DBOptions is the engine-wide option group (spec §4 expansion "Option
// surface").
type DBOptions struct {
	CreateIfMissing bool
	MaxOpenFiles    int32
	WALBytesPerSync uint64
	ParanoidChecks  bool
	InfoLogLevel    int64
	RateLimiter     RateLimiter
	Listeners       []string
}

// DBOptionsTable is DBOptions' descriptor table.
var DBOptionsTable = func() *descriptor.Table {
	t := descriptor.NewTable()

	cGet, cSet := descriptor.Field[DBOptions, bool](func(o *DBOptions) *bool { return &o.CreateIfMissing })
	t.Add("create_if_missing", &descriptor.Descriptor{Tag: descriptor.Boolean, Get: cGet, Set: cSet})

	mGet, mSet := descriptor.Field[DBOptions, int32](func(o *DBOptions) *int32 { return &o.MaxOpenFiles })
	t.Add("max_open_files", &descriptor.Descriptor{Tag: descriptor.Int32, Get: mGet, Set: mSet})

	wGet, wSet := descriptor.Field[DBOptions, uint64](func(o *DBOptions) *uint64 { return &o.WALBytesPerSync })
	t.Add("wal_bytes_per_sync", &descriptor.Descriptor{Tag: descriptor.Size, Get: wGet, Set: wSet})

	pGet, pSet := descriptor.Field[DBOptions, bool](func(o *DBOptions) *bool { return &o.ParanoidChecks })
	t.Add("paranoid_checks", &descriptor.Descriptor{Tag: descriptor.Boolean, Get: pGet, Set: pSet})

	lNames, lValues := descriptor.NewEnum(infoLogLevelNames)
	lGet, lSet := descriptor.Field[DBOptions, int64](func(o *DBOptions) *int64 { return &o.InfoLogLevel })
	t.Add("info_log_level", &descriptor.Descriptor{Tag: descriptor.Enum, Get: lGet, Set: lSet, EnumNames: lNames, EnumValues: lValues})

	rlSub := descriptor.SubField[DBOptions, RateLimiter](func(o *DBOptions) *RateLimiter { return &o.RateLimiter })
	t.Add("rate_limiter", &descriptor.Descriptor{Tag: descriptor.Struct, SubRecord: rlSub, Sub: RateLimiterTable})

	lnGet, lnSet, lnMake, lnElems := descriptor.VectorField[DBOptions, string](func(o *DBOptions) *[]string { return &o.Listeners })
	t.Add("listeners", &descriptor.Descriptor{
		Tag: descriptor.Vector, Get: lnGet, Set: lnSet, MakeSlice: lnMake, Elems: lnElems,
		Element: &descriptor.Descriptor{Tag: descriptor.String},
	})

	return t
}()

// ColumnFamilyOptions is the per-column-family option group (spec §4
// expansion "Option surface").
type ColumnFamilyOptions struct {
	WriteBufferSize     uint64
	Compression         int64
	CompressionOpts     CompressionOptions
	TableOpts           TableOptions
	FilterPolicy        descriptor.ConfigurableObject
	MergeOperator       descriptor.ConfigurableObject
	PrefixExtractor     *codec.Transform
	CompactionStyle     int64
	CompactionPri       int64
	CompactionStopStyle int64
}

// ColumnFamilyOptionsTable is ColumnFamilyOptions' descriptor table.
var ColumnFamilyOptionsTable = func() *descriptor.Table {
	t := descriptor.NewTable()

	wGet, wSet := descriptor.Field[ColumnFamilyOptions, uint64](func(o *ColumnFamilyOptions) *uint64 { return &o.WriteBufferSize })
	t.Add("write_buffer_size", &descriptor.Descriptor{Tag: descriptor.Size, Get: wGet, Set: wSet})

	compNames, compValues := descriptor.NewEnum(compressionTypeNames)
	compGet, compSet := descriptor.Field[ColumnFamilyOptions, int64](func(o *ColumnFamilyOptions) *int64 { return &o.Compression })
	t.Add("compression", &descriptor.Descriptor{Tag: descriptor.CompressionType, Get: compGet, Set: compSet, EnumNames: compNames, EnumValues: compValues})

	csNames, csValues := descriptor.NewEnum(compactionStyleNames)
	csGet, csSet := descriptor.Field[ColumnFamilyOptions, int64](func(o *ColumnFamilyOptions) *int64 { return &o.CompactionStyle })
	t.Add("compaction_style", &descriptor.Descriptor{Tag: descriptor.CompactionStyle, Get: csGet, Set: csSet, EnumNames: csNames, EnumValues: csValues})

	cpNames, cpValues := descriptor.NewEnum(compactionPriNames)
	cpGet, cpSet := descriptor.Field[ColumnFamilyOptions, int64](func(o *ColumnFamilyOptions) *int64 { return &o.CompactionPri })
	t.Add("compaction_pri", &descriptor.Descriptor{Tag: descriptor.CompactionPri, Get: cpGet, Set: cpSet, EnumNames: cpNames, EnumValues: cpValues})

	cssNames, cssValues := descriptor.NewEnum(compactionStopStyleNames)
	cssGet, cssSet := descriptor.Field[ColumnFamilyOptions, int64](func(o *ColumnFamilyOptions) *int64 { return &o.CompactionStopStyle })
	t.Add("compaction_stop_style", &descriptor.Descriptor{Tag: descriptor.CompactionStopStyle, Get: cssGet, Set: cssSet, EnumNames: cssNames, EnumValues: cssValues})

	coSub := descriptor.SubField[ColumnFamilyOptions, CompressionOptions](func(o *ColumnFamilyOptions) *CompressionOptions { return &o.CompressionOpts })
	t.Add("compression_opts", &descriptor.Descriptor{Tag: descriptor.Struct, SubRecord: coSub, Sub: CompressionOptionsTable})

	toSub := descriptor.SubField[ColumnFamilyOptions, TableOptions](func(o *ColumnFamilyOptions) *TableOptions { return &o.TableOpts })
	t.Add("table_options", &descriptor.Descriptor{Tag: descriptor.Struct, SubRecord: toSub, Sub: TableOptionsTable})

	fpGet, fpSet := descriptor.ChildField[ColumnFamilyOptions](func(o *ColumnFamilyOptions) *descriptor.ConfigurableObject { return &o.FilterPolicy })
	t.Add("filter_policy", &descriptor.Descriptor{Tag: descriptor.Customizable, ChildGet: fpGet, ChildSet: fpSet, CustomizableTag: "FilterPolicy"})

	moGet, moSet := descriptor.ChildField[ColumnFamilyOptions](func(o *ColumnFamilyOptions) *descriptor.ConfigurableObject { return &o.MergeOperator })
	t.Add("merge_operator", &descriptor.Descriptor{Tag: descriptor.Customizable, ChildGet: moGet, ChildSet: moSet, CustomizableTag: "MergeOperator"})

	pxGet, pxSet := descriptor.Field[ColumnFamilyOptions, *codec.Transform](func(o *ColumnFamilyOptions) **codec.Transform { return &o.PrefixExtractor })
	t.Add("prefix_extractor", &descriptor.Descriptor{
		Tag: descriptor.PrefixTransform, Get: pxGet, Set: pxSet,
		Parse: func(ctx ctxopt.Context, record interface{}, token string) error {
			o := record.(*ColumnFamilyOptions)
			tr, err := codec.ParsePrefixTransform(token)
			if err != nil {
				return err
			}
			o.PrefixExtractor = tr
			return nil
		},
		Serialize: func(ctx ctxopt.Context, record interface{}) (string, error) {
			o := record.(*ColumnFamilyOptions)
			return codec.SerializePrefixTransform(o.PrefixExtractor)
		},
		Equals: func(ctx ctxopt.Context, a, b interface{}) (bool, error) {
			av, _ := a.(*codec.Transform)
			bv, _ := b.(*codec.Transform)
			return codec.EqualsPrefixTransform(av, bv), nil
		},
	})

	return t
}()

// NewDBOptions constructs a ready-to-configure DBOptions Configurable
// with sane defaults.
func NewDBOptions() (*configurable.Configurable, *DBOptions) {
	rec := &DBOptions{MaxOpenFiles: -1}
	return configurable.New("").AddGroup("db_options", rec, DBOptionsTable), rec
}

// NewColumnFamilyOptions constructs a ready-to-configure
// ColumnFamilyOptions Configurable with sane defaults.
func NewColumnFamilyOptions() (*configurable.Configurable, *ColumnFamilyOptions) {
	rec := &ColumnFamilyOptions{WriteBufferSize: 64 << 20}
	return configurable.New("").AddGroup("cf_options", rec, ColumnFamilyOptionsTable), rec
}
