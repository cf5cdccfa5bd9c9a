package sandbox

import (
	"context"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/docker/docker/client"
	"golang.org/x/crypto/ssh"

	appErr "judgemicro/pkg/errors"
)

// RemoteConfig points the manager at a Docker daemon on another machine,
// reached over SSH.
type RemoteConfig struct {
	Addr       string `yaml:"addr"`
	User       string `yaml:"user"`
	KeyFile    string `yaml:"key_file"`
	SocketPath string `yaml:"socket_path"`
}

// SetDefault fills unset fields.
func (c *RemoteConfig) SetDefault() {
	if c.SocketPath == "" {
		c.SocketPath = "/var/run/docker.sock"
	}
}

// NewRemoteManager builds a DockerManager whose API calls tunnel through an
// SSH connection to the remote daemon's unix socket.
func NewRemoteManager(cfg Config, remote RemoteConfig) (*DockerManager, error) {
	cfg.SetDefault()
	remote.SetDefault()

	key, err := os.ReadFile(remote.KeyFile)
	if err != nil {
		return nil, appErr.Wrapf(err, appErr.RemoteDialFailed, "read ssh key %s", remote.KeyFile)
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, appErr.Wrapf(err, appErr.RemoteDialFailed, "parse ssh key")
	}

	sshClient, err := ssh.Dial("tcp", remote.Addr, &ssh.ClientConfig{
		User:            remote.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         10 * time.Second,
	})
	if err != nil {
		return nil, appErr.Wrapf(err, appErr.RemoteDialFailed, "ssh dial %s", remote.Addr)
	}

	httpClient := &http.Client{
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				return sshClient.Dial("unix", remote.SocketPath)
			},
		},
	}
	cli, err := client.NewClientWithOpts(
		client.WithHost("http://docker"),
		client.WithHTTPClient(httpClient),
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, appErr.Wrapf(err, appErr.RemoteDialFailed, "docker client over ssh")
	}
	return newManager(cli, cfg), nil
}
