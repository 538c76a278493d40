package manifest

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	utiljson "k8s.io/apimachinery/pkg/util/json"
	utilyaml "k8s.io/apimachinery/pkg/util/yaml"
	"sigs.k8s.io/yaml"
)

// decodeDocuments splits data into YAML documents and decodes each non-empty
// one into an object. Every document must be a mapping.
func decodeDocuments(data []byte) ([]*unstructured.Unstructured, error) {
	reader := utilyaml.NewYAMLReader(bufio.NewReader(bytes.NewReader(data)))

	var objects []*unstructured.Unstructured
	for index := 0; ; index++ {
		doc, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", index, err)
		}

		jsonDoc, err := yaml.YAMLToJSON(doc)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", index, err)
		}
		if trimmed := bytes.TrimSpace(jsonDoc); len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
			continue
		}

		obj := map[string]interface{}{}
		if err := utiljson.Unmarshal(jsonDoc, &obj); err != nil {
			return nil, fmt.Errorf("document %d is not a mapping: %w", index, err)
		}
		objects = append(objects, &unstructured.Unstructured{Object: obj})
	}
	return objects, nil
}
