package sandbox

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/google/uuid"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"go.uber.org/zap"

	"judgemicro/internal/judge/model"
	appErr "judgemicro/pkg/errors"
	"judgemicro/pkg/utils/logger"
)

// Config drives the Docker sandbox manager.
type Config struct {
	Host          string            `yaml:"host"`
	Images        map[string]string `yaml:"images"`
	MaxConcurrent int               `yaml:"max_concurrent"`
	WorkDir       string            `yaml:"work_dir"`
	// ExecMarginS pads every exec deadline so the harness's own timeouts
	// fire before the outer kill does.
	ExecMarginS int `yaml:"exec_margin"`
}

// SetDefault fills unset fields.
func (c *Config) SetDefault() {
	if c.WorkDir == "" {
		c.WorkDir = "/app"
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = 8
	}
	if c.ExecMarginS <= 0 {
		c.ExecMarginS = 5
	}
}

// dockerAPI is the slice of the Docker client the manager uses.
type dockerAPI interface {
	ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *ocispec.Platform, containerName string) (container.CreateResponse, error)
	ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error
	ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error
	ContainerKill(ctx context.Context, containerID, signal string) error
	CopyToContainer(ctx context.Context, containerID, dstPath string, content io.Reader, options container.CopyToContainerOptions) error
	CopyFromContainer(ctx context.Context, containerID, srcPath string) (io.ReadCloser, container.PathStat, error)
	ContainerExecCreate(ctx context.Context, containerID string, options container.ExecOptions) (types.IDResponse, error)
	ContainerExecAttach(ctx context.Context, execID string, options container.ExecAttachOptions) (types.HijackedResponse, error)
	ContainerExecInspect(ctx context.Context, execID string) (container.ExecInspect, error)
}

// DockerManager provisions one container per evaluation on a Docker host.
type DockerManager struct {
	api     dockerAPI
	cfg     Config
	limiter *TokenLimiter
}

// NewDockerManager connects to the configured Docker host, or the environment
// default when no host is set.
func NewDockerManager(cfg Config) (*DockerManager, error) {
	cfg.SetDefault()
	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if cfg.Host != "" {
		opts = append(opts, client.WithHost(cfg.Host))
	}
	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, appErr.Wrapf(err, appErr.SandboxCreateFailed, "docker client init")
	}
	return newManager(cli, cfg), nil
}

func newManager(api dockerAPI, cfg Config) *DockerManager {
	cfg.SetDefault()
	return &DockerManager{
		api:     api,
		cfg:     cfg,
		limiter: NewTokenLimiter(cfg.MaxConcurrent),
	}
}

// Acquire creates and starts an idle container for the language. The caller
// owns the returned handle and must Release it.
func (m *DockerManager) Acquire(ctx context.Context, lang model.Language, limits model.ResourceLimits) (*Handle, error) {
	image, ok := m.cfg.Images[string(lang)]
	if !ok {
		return nil, appErr.Newf(appErr.ImageNotRegistered, "no image registered for language %q", lang)
	}

	if err := m.limiter.Acquire(ctx); err != nil {
		return nil, appErr.Wrapf(err, appErr.SandboxQueueFull, "sandbox queue")
	}

	name := "judge-" + uuid.NewString()[:12]
	created, err := m.api.ContainerCreate(ctx, &container.Config{
		Image:           image,
		Cmd:             []string{"sleep", "infinity"},
		WorkingDir:      m.cfg.WorkDir,
		NetworkDisabled: true,
	}, &container.HostConfig{
		NetworkMode: "none",
		Resources: container.Resources{
			Memory:   limits.MemoryBytes,
			NanoCPUs: int64(limits.CPUCores * 1e9),
		},
	}, &network.NetworkingConfig{}, nil, name)
	if err != nil {
		m.limiter.Release()
		return nil, appErr.Wrapf(err, appErr.SandboxCreateFailed, "container create")
	}

	h := &Handle{ID: created.ID, Language: lang, Image: image}
	if err := m.api.ContainerStart(ctx, created.ID, container.StartOptions{}); err != nil {
		if releaseErr := m.Release(context.Background(), h); releaseErr != nil {
			logger.Warn(ctx, "release after failed start",
				zap.String("container_id", created.ID), zap.Error(releaseErr))
		}
		return nil, appErr.Wrapf(err, appErr.SandboxCreateFailed, "container start")
	}
	return h, nil
}

// Upload copies one file into the sandbox workdir.
func (m *DockerManager) Upload(ctx context.Context, h *Handle, name string, data []byte) error {
	mode := int64(0644)
	archive, err := tarFile(name, data, mode)
	if err != nil {
		return err
	}
	if err := m.api.CopyToContainer(ctx, h.ID, m.cfg.WorkDir, archive, container.CopyToContainerOptions{}); err != nil {
		return appErr.Wrapf(err, appErr.SandboxUploadFailed, "copy %s", name)
	}
	return nil
}

// Exec runs one command in the sandbox workdir under a wall deadline. On a
// deadline breach the container is killed and Killed is set; the handle is
// unusable afterwards.
func (m *DockerManager) Exec(ctx context.Context, h *Handle, cmd []string, deadline time.Duration) (ExecResult, error) {
	var res ExecResult

	created, err := m.api.ContainerExecCreate(ctx, h.ID, container.ExecOptions{
		Cmd:          cmd,
		WorkingDir:   m.cfg.WorkDir,
		AttachStdout: true,
		AttachStderr: true,
	})
	if err != nil {
		return res, appErr.Wrapf(err, appErr.SandboxExecFailed, "exec create")
	}

	attach, err := m.api.ContainerExecAttach(ctx, created.ID, container.ExecAttachOptions{})
	if err != nil {
		return res, appErr.Wrapf(err, appErr.SandboxExecFailed, "exec attach")
	}
	defer attach.Close()

	var stdout, stderr bytes.Buffer
	done := make(chan error, 1)
	go func() {
		_, copyErr := stdcopy.StdCopy(&stdout, &stderr, attach.Reader)
		done <- copyErr
	}()

	outer := deadline + time.Duration(m.cfg.ExecMarginS)*time.Second
	timer := time.NewTimer(outer)
	defer timer.Stop()

	start := time.Now()
	select {
	case copyErr := <-done:
		if copyErr != nil {
			return res, appErr.Wrapf(copyErr, appErr.SandboxExecFailed, "exec stream")
		}
	case <-timer.C:
		res.Killed = true
		_ = m.api.ContainerKill(context.Background(), h.ID, "SIGKILL")
		<-done
	case <-ctx.Done():
		_ = m.api.ContainerKill(context.Background(), h.ID, "SIGKILL")
		<-done
		return res, ctx.Err()
	}
	res.Wall = time.Since(start)
	res.Stdout = stdout.String()
	res.Stderr = stderr.String()

	inspect, err := m.api.ContainerExecInspect(context.Background(), created.ID)
	if err != nil {
		if res.Killed {
			res.ExitCode = 137
			return res, nil
		}
		return res, appErr.Wrapf(err, appErr.SandboxExecFailed, "exec inspect")
	}
	res.ExitCode = inspect.ExitCode
	if res.Killed && res.ExitCode == 0 {
		res.ExitCode = 137
	}
	return res, nil
}

// Download fetches one file from the sandbox.
func (m *DockerManager) Download(ctx context.Context, h *Handle, path string) ([]byte, error) {
	rc, _, err := m.api.CopyFromContainer(ctx, h.ID, path)
	if err != nil {
		return nil, appErr.Wrapf(err, appErr.SandboxFetchFailed, "copy %s", path)
	}
	defer rc.Close()
	return untarFile(rc)
}

// Release force-removes the container and returns the concurrency token.
// Idempotent: only the first call acts.
func (m *DockerManager) Release(ctx context.Context, h *Handle) error {
	if h == nil {
		return nil
	}
	var err error
	h.releaseOnce.Do(func() {
		err = m.api.ContainerRemove(ctx, h.ID, container.RemoveOptions{Force: true})
		m.limiter.Release()
	})
	if err != nil {
		return appErr.Wrapf(err, appErr.SandboxReleaseFailed, "container remove")
	}
	return nil
}
