package e2e_test

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/mcncl/gloss/internal/decoder"
	"github.com/mcncl/gloss/internal/encoder"
	"github.com/mcncl/gloss/internal/parser"
	"github.com/mcncl/gloss/internal/schema"
	"github.com/stretchr/testify/require"
)

// generateNestedJSON creates a deeply nested JSON structure for benchmarking
func generateNestedJSON(depth int, width int) map[string]interface{} {
	if depth <= 0 {
		return map[string]interface{}{
			"leaf_value": "data",
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
			"count":      rand.Intn(100),
			"enabled":    rand.Intn(2) == 1,
		}
	}

	result := make(map[string]interface{})
	for i := 0; i < width; i++ {
		key := fmt.Sprintf("nested_%d_%d", depth, i)
		result[key] = generateNestedJSON(depth-1, width)
	}
	return result
}

// nestedFields names the leaves along the first branch of generateNestedJSON
func nestedFields(depth int) []string {
	segments := make([]string, 0, depth)
	for d := depth; d > 0; d-- {
		segments = append(segments, fmt.Sprintf("nested_%d_0", d))
	}
	path := strings.Join(segments, ".")
	return []string{
		path + ".leaf_value:string!",
		path + ".timestamp:date",
		path + ".count:int",
		path + ".enabled:bool",
	}
}

// generateWideJSON creates a JSON object with many fields at the same level,
// returning the field specs that decode all of them
func generateWideJSON(fieldCount int) (map[string]interface{}, []string) {
	result := make(map[string]interface{}, fieldCount)
	specs := make([]string, 0, fieldCount)

	for i := 0; i < fieldCount; i++ {
		switch i % 5 {
		case 0:
			key := fmt.Sprintf("string_field_%d", i)
			result[key] = fmt.Sprintf("value_%d", i)
			specs = append(specs, key+":string")
		case 1:
			key := fmt.Sprintf("int_field_%d", i)
			result[key] = i
			specs = append(specs, key+":int")
		case 2:
			key := fmt.Sprintf("bool_field_%d", i)
			result[key] = i%2 == 0
			specs = append(specs, key+":bool")
		case 3:
			key := fmt.Sprintf("float_field_%d", i)
			result[key] = float64(i) + 0.5
			specs = append(specs, key+":double")
		case 4:
			key := fmt.Sprintf("object_field_%d", i)
			result[key] = map[string]interface{}{
				"id":    i,
				"name":  fmt.Sprintf("Object %d", i),
				"value": i * 10,
			}
			specs = append(specs, key+".id:int", key+".name:string")
		}
	}
	return result, specs
}

func benchmarkDecode(b *testing.B, doc map[string]interface{}, specs []string) {
	data, err := json.Marshal(doc)
	require.NoError(b, err)
	fields, err := schema.Parse(specs)
	require.NoError(b, err)

	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		obj, err := parser.ParseObject(data)
		if err != nil {
			b.Fatal(err)
		}
		rec, err := fields.Decode(obj, decoder.ISO8601)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := encoder.Marshal(rec.Object); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkDeepNesting benchmarks key-path decoding through deeply nested objects
func BenchmarkDeepNesting(b *testing.B) {
	for _, depth := range []int{2, 4, 6} {
		b.Run(fmt.Sprintf("depth=%d", depth), func(b *testing.B) {
			benchmarkDecode(b, generateNestedJSON(depth, 3), nestedFields(depth))
		})
	}
}

// BenchmarkWideObjects benchmarks decoding many fields at the same level
func BenchmarkWideObjects(b *testing.B) {
	for _, count := range []int{10, 100, 1000} {
		b.Run(fmt.Sprintf("fields=%d", count), func(b *testing.B) {
			doc, specs := generateWideJSON(count)
			benchmarkDecode(b, doc, specs)
		})
	}
}
