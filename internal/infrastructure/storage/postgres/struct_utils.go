package postgres

import (
	"reflect"
	"sync"
)

// Columns returns the "db" tag of every field of T, descending into embedded structs.
// Repositories call it once per row type to build their column lists.
//
//	productColumns = postgres.Columns[product.Product]()
//	// ["id", "code", "name", "category_id", ...]
func Columns[T any]() []string {
	meta := metadataOf(reflect.TypeFor[T]())
	return meta.columns()
}

type fieldInfo struct {
	index []int
	dbTag string
}

type typeMetadata struct {
	fields []fieldInfo
}

func (m *typeMetadata) columns() []string {
	cols := make([]string, len(m.fields))
	for i, f := range m.fields {
		cols[i] = f.dbTag
	}
	return cols
}

var typeCache sync.Map // map[reflect.Type]*typeMetadata

// metadataOf returns the tagged fields of t, computed once per type.
func metadataOf(t reflect.Type) *typeMetadata {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if cached, ok := typeCache.Load(t); ok {
		return cached.(*typeMetadata)
	}

	meta := &typeMetadata{}
	if t.Kind() == reflect.Struct {
		collectFields(t, nil, meta)
	}
	actual, _ := typeCache.LoadOrStore(t, meta)
	return actual.(*typeMetadata)
}

func collectFields(t reflect.Type, prefix []int, meta *typeMetadata) {
	for i := range t.NumField() {
		field := t.Field(i)
		index := append(append([]int(nil), prefix...), i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			collectFields(field.Type, index, meta)
			continue
		}
		tag := field.Tag.Get("db")
		if tag == "" || tag == "-" || !field.IsExported() {
			continue
		}
		meta.fields = append(meta.fields, fieldInfo{index: index, dbTag: tag})
	}
}

// StructToMap converts a struct, or a pointer to one, into column -> value using "db" tags.
func StructToMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	meta := metadataOf(rv.Type())
	res := make(map[string]any, len(meta.fields))
	for _, f := range meta.fields {
		res[f.dbTag] = rv.FieldByIndex(f.index).Interface()
	}
	return res
}
