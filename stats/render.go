// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package stats

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/zintix-labs/hongbao/errs"
	"gopkg.in/yaml.v3"
)

// Render 同時負責模擬報表與玩家體驗評估的輸出。
type Render interface {
	StatReportRender
	EstimatorRender
}

// NewRender 依格式名稱取得 Render："json"、"yaml"、"table"（預設）。
func NewRender(format string) (Render, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "table", "text":
		return tableRender{}, nil
	case "json":
		return jsonRender{}, nil
	case "yaml", "yml":
		return yamlRender{}, nil
	}
	return nil, errs.Warnf("unknown report format: %q", format)
}

// StatReportRender 定義輸出行為
type StatReportRender interface {
	Write(w io.Writer, r *StatReport) error
}

type EstimatorRender interface {
	WriteEstimator(w io.Writer, e *EstimatorPlayers) error
}

// Json渲染
type jsonRender struct{}

func (jsonRender) Write(w io.Writer, r *StatReport) error {
	return json.NewEncoder(w).Encode(r)
}

func (jsonRender) WriteEstimator(w io.Writer, e *EstimatorPlayers) error {
	return json.NewEncoder(w).Encode(e)
}

// YAML渲染
//
// 不管欄位，只要是陣列（YAML Sequence），就維持外層預設展開；
// 只有「最內層的一維陣列」或「本身就是一維陣列」時才輸出成 flow style：[..., ...]
type yamlRender struct{}

func (yamlRender) Write(w io.Writer, r *StatReport) error {
	return forceReadableList(w, r)
}

func (yamlRender) WriteEstimator(w io.Writer, e *EstimatorPlayers) error {
	return forceReadableList(w, e)
}

// 終端機表格
type tableRender struct{}

func (tableRender) Write(w io.Writer, r *StatReport) error {
	keys, msg := r.fmtBasic()
	_, err := fmt.Fprintln(w, fmtTable(r.Summary.Name, keys, msg))
	return err
}

func (tableRender) WriteEstimator(w io.Writer, e *EstimatorPlayers) error {
	e.Out(w)
	return nil
}

// YAML 內層方法
func forceReadableList[T any](w io.Writer, t *T) error {
	var node yaml.Node
	if err := node.Encode(t); err != nil {
		return errs.Wrap(err, "encode report yaml")
	}
	styleReadableSequences(&node)

	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(&node)
}

// styleReadableSequences 自頂向下調整 sequence node 的 style：
// 內部沒有子 sequence 的（最內層一維）改成 flow style，外層維度保持 block。
func styleReadableSequences(n *yaml.Node) {
	if n == nil {
		return
	}
	switch n.Kind {
	case yaml.DocumentNode, yaml.MappingNode:
		for _, c := range n.Content {
			styleReadableSequences(c)
		}
	case yaml.SequenceNode:
		hasChildSeq := false
		for _, c := range n.Content {
			if c != nil && c.Kind == yaml.SequenceNode {
				hasChildSeq = true
			}
			styleReadableSequences(c)
		}
		if !hasChildSeq {
			n.Style = yaml.FlowStyle
		}
	}
}
