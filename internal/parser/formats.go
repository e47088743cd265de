package parser

import (
	"encoding/base64"
	"fmt"
	"math"
	"math/big"
	"mime"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/fxamacker/cbor/v2"
	"github.com/goccy/go-json"
	"github.com/mcncl/gloss/internal/errors"
	"github.com/mcncl/gloss/internal/models"
	"github.com/vmihailenco/msgpack/v5"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"gopkg.in/yaml.v3"
)

// Format identifies a wire format that can be read into a JSON value tree.
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatTOML     Format = "toml"
	FormatMsgpack  Format = "msgpack"
	FormatCBOR     Format = "cbor"
	FormatProtobuf Format = "protobuf"
)

var contentTypes = map[string]Format{
	"application/json":         FormatJSON,
	"text/json":                FormatJSON,
	"application/problem+json": FormatJSON,
	"application/yaml":         FormatYAML,
	"application/x-yaml":       FormatYAML,
	"text/yaml":                FormatYAML,
	"application/toml":         FormatTOML,
	"application/msgpack":      FormatMsgpack,
	"application/x-msgpack":    FormatMsgpack,
	"application/vnd.msgpack":  FormatMsgpack,
	"application/cbor":         FormatCBOR,
	"application/protobuf":     FormatProtobuf,
	"application/x-protobuf":   FormatProtobuf,
}

var extensions = map[string]Format{
	".json":    FormatJSON,
	".yaml":    FormatYAML,
	".yml":     FormatYAML,
	".toml":    FormatTOML,
	".msgpack": FormatMsgpack,
	".mpk":     FormatMsgpack,
	".cbor":    FormatCBOR,
	".pb":      FormatProtobuf,
}

// ContentType returns the canonical MIME type for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatYAML:
		return "application/yaml"
	case FormatTOML:
		return "application/toml"
	case FormatMsgpack:
		return "application/msgpack"
	case FormatCBOR:
		return "application/cbor"
	case FormatProtobuf:
		return "application/protobuf"
	default:
		return "application/json"
	}
}

// FormatFromContentType maps a Content-Type header to a Format.
// Any "+json" structured syntax suffix is treated as JSON.
func FormatFromContentType(contentType string) (Format, bool) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", false
	}
	if f, ok := contentTypes[mediaType]; ok {
		return f, true
	}
	if strings.HasSuffix(mediaType, "+json") {
		return FormatJSON, true
	}
	return "", false
}

// FormatFromPath maps a file extension to a Format.
func FormatFromPath(path string) (Format, bool) {
	f, ok := extensions[strings.ToLower(filepath.Ext(path))]
	return f, ok
}

// ParseFormat validates a user-supplied format name.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	switch f {
	case FormatJSON, FormatYAML, FormatTOML, FormatMsgpack, FormatCBOR, FormatProtobuf:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", errors.NewInputError(fmt.Sprintf("unknown format %q", name), errors.ErrUnsupportedFormat)
}

var cborDecMode = func() cbor.DecMode {
	dm, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]interface{}(nil)),
	}.DecMode()
	if err != nil {
		panic(err)
	}
	return dm
}()

// ParseAs reads data in the given format and normalizes it into the same
// tree the JSON parser produces: objects are JSONObject, arrays are
// JSONArray and numbers are json.Number.
func ParseAs(format Format, data []byte) (models.IntermediateRepresentation, error) {
	if format == FormatJSON || format == "" {
		return ParseBytes(data)
	}
	if len(data) == 0 {
		return models.IntermediateRepresentation{}, errors.NewInputError("input is empty", errors.ErrEmptyInput)
	}

	var raw interface{}
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &raw)
	case FormatTOML:
		var table map[string]interface{}
		err = toml.Unmarshal(data, &table)
		raw = table
	case FormatMsgpack:
		err = msgpack.Unmarshal(data, &raw)
	case FormatCBOR:
		err = cborDecMode.Unmarshal(data, &raw)
	case FormatProtobuf:
		st := &structpb.Struct{}
		err = proto.Unmarshal(data, st)
		raw = st.AsMap()
	default:
		return models.IntermediateRepresentation{}, errors.NewInputError(fmt.Sprintf("unknown format %q", format), errors.ErrUnsupportedFormat)
	}
	if err != nil {
		return models.IntermediateRepresentation{}, errors.NewParsingError(fmt.Sprintf("failed to decode %s", format), err)
	}

	root, err := normalize(raw)
	if err != nil {
		return models.IntermediateRepresentation{}, errors.NewParsingError(fmt.Sprintf("%s value has no JSON equivalent", format), err)
	}
	return newRepresentation(root), nil
}

// normalize converts a value produced by any supported decoder into a JSON value tree.
func normalize(val interface{}) (models.JSONValue, error) {
	switch v := val.(type) {
	case nil, bool, string, json.Number:
		return v, nil
	case map[string]interface{}:
		return normalizeMap(len(v), func(yield func(string, interface{}) error) error {
			for k, item := range v {
				if err := yield(k, item); err != nil {
					return err
				}
			}
			return nil
		})
	case map[interface{}]interface{}:
		return normalizeMap(len(v), func(yield func(string, interface{}) error) error {
			for k, item := range v {
				if err := yield(fmt.Sprint(k), item); err != nil {
					return err
				}
			}
			return nil
		})
	case models.JSONObject:
		return normalize(map[string]interface{}(v))
	case []interface{}:
		arr := make(models.JSONArray, len(v))
		for i, item := range v {
			n, err := normalize(item)
			if err != nil {
				return nil, err
			}
			arr[i] = n
		}
		return arr, nil
	case []map[string]interface{}: // TOML arrays of tables
		arr := make(models.JSONArray, len(v))
		for i, item := range v {
			n, err := normalize(item)
			if err != nil {
				return nil, err
			}
			arr[i] = n
		}
		return arr, nil
	case models.JSONArray:
		return normalize([]interface{}(v))
	case int:
		return json.Number(strconv.FormatInt(int64(v), 10)), nil
	case int8:
		return json.Number(strconv.FormatInt(int64(v), 10)), nil
	case int16:
		return json.Number(strconv.FormatInt(int64(v), 10)), nil
	case int32:
		return json.Number(strconv.FormatInt(int64(v), 10)), nil
	case int64:
		return json.Number(strconv.FormatInt(v, 10)), nil
	case uint:
		return json.Number(strconv.FormatUint(uint64(v), 10)), nil
	case uint8:
		return json.Number(strconv.FormatUint(uint64(v), 10)), nil
	case uint16:
		return json.Number(strconv.FormatUint(uint64(v), 10)), nil
	case uint32:
		return json.Number(strconv.FormatUint(uint64(v), 10)), nil
	case uint64:
		return json.Number(strconv.FormatUint(v, 10)), nil
	case float32:
		return floatNumber(float64(v), 32)
	case float64:
		return floatNumber(v, 64)
	case big.Int:
		return json.Number(v.String()), nil
	case *big.Int:
		return json.Number(v.String()), nil
	case time.Time:
		return v.Format(time.RFC3339Nano), nil
	case []byte:
		return base64.StdEncoding.EncodeToString(v), nil
	default:
		return nil, fmt.Errorf("unsupported value of type %T", val)
	}
}

func normalizeMap(size int, each func(yield func(string, interface{}) error) error) (models.JSONObject, error) {
	obj := make(models.JSONObject, size)
	err := each(func(k string, item interface{}) error {
		n, err := normalize(item)
		if err != nil {
			return fmt.Errorf("key %q: %w", k, err)
		}
		obj[k] = n
		return nil
	})
	if err != nil {
		return nil, err
	}
	return obj, nil
}

func floatNumber(f float64, bitSize int) (models.JSONValue, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%v is not a JSON number", f)
	}
	return json.Number(strconv.FormatFloat(f, 'g', -1, bitSize)), nil
}
