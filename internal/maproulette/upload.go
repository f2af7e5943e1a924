package maproulette

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"golang.org/x/sync/errgroup"

	"atlas-checks/internal/checks"
	"atlas-checks/internal/flag"
	"atlas-checks/internal/logger"
)

const (
	// BatchSize 每次 POST 的任务数
	BatchSize = 500
	// Concurrency 同时进行的批次数
	Concurrency = 4
)

// UploadTasks 分批并发上传；任一批失败即返回首个错误
func (c *Client) UploadTasks(ctx context.Context, challengeID int64, tasks []flag.Task) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(Concurrency)
	for start := 0; start < len(tasks); start += BatchSize {
		end := min(start+BatchSize, len(tasks))
		batch := make([]flag.Task, end-start)
		copy(batch, tasks[start:end])
		for i := range batch {
			batch[i].Parent = challengeID
		}
		g.Go(func() error {
			return c.do(ctx, http.MethodPost, "/api/v2/tasks", batch, nil)
		})
	}
	return g.Wait()
}

// ChallengeFor 按检查名给出挑战描述；nil 时使用检查名与默认难度
type ChallengeFor func(check string) checks.Challenge

// Upload 上传容器内全部标记
func Upload(ctx context.Context, c *Client, projectName string, container *flag.Container, challengeFor ChallengeFor) (int, error) {
	records, err := container.Records()
	if err != nil {
		return 0, err
	}
	return UploadRecords(ctx, c, projectName, records, challengeFor)
}

// UploadRecords：确保项目存在，按检查建立挑战并上传任务；返回上传任务数
func UploadRecords(ctx context.Context, c *Client, projectName string, records []flag.Record, challengeFor ChallengeFor) (int, error) {
	project, err := c.EnsureProject(ctx, projectName)
	if err != nil {
		return 0, err
	}
	byCheck := map[string][]flag.Record{}
	for _, r := range records {
		byCheck[r.Check] = append(byCheck[r.Check], r)
	}
	names := make([]string, 0, len(byCheck))
	for name := range byCheck {
		names = append(names, name)
	}
	sort.Strings(names)

	total := 0
	for _, name := range names {
		ch := checks.Challenge{Name: name, Difficulty: checks.DifficultyEasy, DefaultPriority: checks.PriorityNone}
		if challengeFor != nil {
			ch = challengeFor(name)
		}
		challenge, err := ensureChallenge(ctx, c, project.ID, ch)
		if err != nil {
			return total, err
		}
		tasks := make([]flag.Task, 0, len(byCheck[name]))
		for _, r := range byCheck[name] {
			t, err := flag.NewTask(r, challenge.ID)
			if err != nil {
				logger.L().Warn("maproulette_task_skip", "check", name, "identifier", r.Identifier, "err", err)
				continue
			}
			tasks = append(tasks, t)
		}
		if err := c.UploadTasks(ctx, challenge.ID, tasks); err != nil {
			logger.L().Error("maproulette_upload_error", "check", name, "err", err)
			return total, err
		}
		total += len(tasks)
		logger.L().Info("maproulette_upload_ok", "project", projectName, "challenge", challenge.Name, "tasks", len(tasks))
	}
	return total, nil
}

func ensureChallenge(ctx context.Context, c *Client, projectID int64, ch checks.Challenge) (ChallengePayload, error) {
	existing, err := c.ChallengeByName(ctx, projectID, ch.Name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return ChallengePayload{}, err
	}
	return c.CreateChallenge(ctx, payloadFrom(projectID, ch))
}

// payloadFrom 将检查的挑战描述映射为 REST 字段；优先级规则以 JSON 字符串传递
func payloadFrom(projectID int64, ch checks.Challenge) ChallengePayload {
	return ChallengePayload{
		Name:               ch.Name,
		Parent:             projectID,
		Description:        ch.Description,
		Blurb:              ch.Blurb,
		Instruction:        ch.Instruction,
		Difficulty:         ch.Difficulty.Value(),
		DefaultPriority:    ch.DefaultPriority.Value(),
		HighPriorityRule:   ruleString(ch.HighPriorityRule),
		MediumPriorityRule: ruleString(ch.MediumPriorityRule),
		LowPriorityRule:    ruleString(ch.LowPriorityRule),
		Tags:               ch.Tags,
		Enabled:            true,
	}
}

func ruleString(rule map[string]any) string {
	if len(rule) == 0 {
		return ""
	}
	data, err := json.Marshal(rule)
	if err != nil {
		return ""
	}
	return string(data)
}
