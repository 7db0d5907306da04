package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/jobrec/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境，定义变量
func initCELEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		cel.Variable("candidate", cel.DynType),
		cel.Variable("label", cel.DynType),
		cel.Variable("rctx", cel.DynType),
	)
	return env, err
}

// getCELEnv 获取或创建 CEL 环境
func getCELEnv() (*cel.Env, error) {
	var err error
	celEnvOnce.Do(func() {
		celEnv, err = initCELEnv()
	})
	return celEnv, err
}

// Eval 是候选职位规则的解释器，使用 CEL (Common Expression Language) 实现。
// 用于 filter.RuleFilter 等按业务规则筛选候选的场景。
//
// 表达式语法（CEL 标准语法）：
//   - 基础：label.source_tag == "content-based"
//   - 数值：candidate.hybrid_score > 0.7 / candidate.content_similarity >= 0.5
//   - 逻辑：label.strategy_tag == "weighted" && candidate.final_score > 0.8
//   - 存在性：label.source_tag != null
//   - 包含：label.source_tag.contains("content")
type Eval struct {
	candidate *core.Candidate
	rctx      *core.RecommendContext
	env       *cel.Env
}

// NewEval 创建一个新的规则解释器。
func NewEval(candidate *core.Candidate, rctx *core.RecommendContext) *Eval {
	env, _ := getCELEnv()
	return &Eval{
		candidate: candidate,
		rctx:      rctx,
		env:       env,
	}
}

// Evaluate 解析并执行规则表达式，返回布尔结果。
// 空表达式视为恒真。
func (e *Eval) Evaluate(expr string) (bool, error) {
	if expr == "" {
		return true, nil
	}
	if e.env == nil {
		return false, fmt.Errorf("cel env not initialized")
	}

	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return false, fmt.Errorf("compile error: %v", issues.Err())
	}

	prg, err := e.env.Program(ast)
	if err != nil {
		return false, fmt.Errorf("program error: %v", err)
	}

	out, _, err := prg.Eval(e.buildInput())
	if err != nil {
		// 访问不存在的 key 时 CEL 会报错；应使用 label.key != null 检查存在性
		return false, fmt.Errorf("eval error: %v", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}

	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据
func (e *Eval) buildInput() map[string]interface{} {
	labels := make(map[string]interface{})
	labelAccessor := make(map[string]interface{})
	for k, v := range e.candidate.Labels {
		labels[k] = map[string]interface{}{
			"value":  v.Value,
			"source": v.Source,
		}
		// label.source_tag 直接取 value，兼容简写
		labelAccessor[k] = v.Value
	}

	candidate := map[string]interface{}{
		"job_id":             e.candidate.JobID,
		"content_similarity": e.candidate.ContentSimilarity,
		"cf_score":           e.candidate.CFScore,
		"hybrid_score":       e.candidate.HybridScore,
		"diversity_score":    e.candidate.DiversityScore,
		"novelty_score":      e.candidate.NoveltyScore,
		"final_score":        e.candidate.FinalScore,
		"strategy_tag":       e.candidate.Strategy,
		"source_tag":         e.candidate.Source,
		"labels":             labels,
	}

	rctx := map[string]interface{}{}
	if e.rctx != nil {
		rctx["candidate_id"] = e.rctx.CandidateID
		rctx["scene"] = e.rctx.Scene
		rctx["params"] = e.rctx.Params
	}

	return map[string]interface{}{
		"candidate": candidate,
		"label":     labelAccessor,
		"rctx":      rctx,
	}
}
