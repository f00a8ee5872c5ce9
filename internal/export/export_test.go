package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/iliyamo/menu-factory/internal/model"
	"github.com/iliyamo/menu-factory/internal/service"
)

// MockS3 is a mock implementation of putObjectAPI
type MockS3 struct {
	mock.Mock
}

func (m *MockS3) PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, _ := io.ReadAll(in.Body)
	args := m.Called(*in.Bucket, *in.Key, *in.ContentType, string(body))
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.PutObjectOutput), args.Error(1)
}

func snapshot() service.Snapshot {
	inst := model.Master()
	return service.Snapshot{
		Instance: inst,
		Dishes:   inst.Seed()[:2],
		Price:    decimal.RequireFromString("16.5"),
	}
}

var stamp = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestDocumentJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, NewDocument(snapshot(), stamp), FormatJSON))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "2024-05-01T12:00:00Z", got["exported_at"])
	assert.Equal(t, model.MasterID, got["instance"])
	assert.Equal(t, "16.50", got["menu_price"])
	dishes := got["dishes"].([]any)
	require.Len(t, dishes, 2)
	assert.Equal(t, "Jamón Ibérico de Bellota", dishes[0].(map[string]any)["ES_Nombre"])
}

func TestDocumentYAMLUsesSeedShape(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, NewDocument(snapshot(), stamp), FormatYAML))

	// the YAML export can be loaded back as a seed
	inst, err := model.ParseSeed(append([]byte("id: copy\n"), buf.Bytes()...))
	require.NoError(t, err)
	require.Len(t, inst.InitialDishes, 2)
	assert.Equal(t, "Acorn-fed Iberian Ham", inst.InitialDishes[0].Name(model.LangEN))

	var raw map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &raw))
	assert.Equal(t, "16.50", raw["menu_price"])
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFor("out/menu.YML"))
	assert.Equal(t, FormatJSON, FormatFor("s3://b/menu.json"))
	assert.Equal(t, FormatJSON, FormatFor("menu"))
}

func TestWriteToFile(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "nested", "menu.json")
	require.NoError(t, Write(context.Background(), snapshot(), dest, ""))

	b, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"instance": "`+model.MasterID+`"`)

	// no temporary files left behind
	entries, err := os.ReadDir(filepath.Dir(dest))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestParseS3URL(t *testing.T) {
	bucket, key, ok := ParseS3URL("s3://menus/2024/bolina.json")
	assert.True(t, ok)
	assert.Equal(t, "menus", bucket)
	assert.Equal(t, "2024/bolina.json", key)

	for _, s := range []string{"menus/x.json", "s3://menus", "s3:///x.json"} {
		_, _, ok := ParseS3URL(s)
		assert.False(t, ok, s)
	}
}

func TestS3WriterUploadsOnClose(t *testing.T) {
	m := new(MockS3)
	m.On("PutObject", "menus", "a/menu.yaml", "application/yaml", "hello").Return(&s3.PutObjectOutput{}, nil).Once()

	w := newS3Writer(context.Background(), m, "menus", "a/menu.yaml")
	_, err := w.Write([]byte("hel"))
	require.NoError(t, err)
	_, err = w.Write([]byte("lo"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	m.AssertExpectations(t)
}

func TestS3WriterReportsUploadFailure(t *testing.T) {
	m := new(MockS3)
	m.On("PutObject", "menus", "menu.json", "application/json", "").Return(nil, errors.New("access denied"))

	err := newS3Writer(context.Background(), m, "menus", "menu.json").Close()
	assert.ErrorContains(t, err, "s3://menus/menu.json")
}
