package shortcode

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/teris-io/shortid"
	"go.uber.org/zap"
)

const (
	// Charset 包含用于生成短码的所有字符，均可直接用作路径段
	Charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// DefaultLength 默认短码长度
	DefaultLength = 7
	// DefaultPoolSize 预生成短码池的大小
	DefaultPoolSize = 1000
	// MinFillThreshold 低于该水位时触发补充
	MinFillThreshold = 100

	StrategyRandom  = "random"
	StrategyShortID = "shortid"
)

// Options 生成器参数
type Options struct {
	Strategy string
	Length   int
	PoolSize int
}

// Generator 负责生成短码。生成不依赖存储，唯一性由存储层的唯一索引保证。
type Generator struct {
	next      func() (string, error)
	codeChan  chan string
	mu        sync.Mutex
	isFilling bool
	stopOnce  sync.Once
	stopChan  chan struct{}
	logger    *zap.SugaredLogger
}

// NewGenerator 创建一个新的短码生成器实例
func NewGenerator(opts Options, logger *zap.SugaredLogger) (*Generator, error) {
	if opts.Length <= 0 {
		opts.Length = DefaultLength
	}
	if opts.PoolSize < 0 {
		opts.PoolSize = 0
	}

	g := &Generator{
		codeChan: make(chan string, opts.PoolSize),
		stopChan: make(chan struct{}),
		logger:   logger.Named("shortcode_generator"),
	}

	switch opts.Strategy {
	case "", StrategyRandom:
		length := opts.Length
		g.next = func() (string, error) { return RandomString(length) }
	case StrategyShortID:
		sid, err := shortid.New(1, shortid.DefaultABC, uint64(time.Now().UnixNano()))
		if err != nil {
			return nil, fmt.Errorf("初始化 shortid 失败: %w", err)
		}
		g.next = sid.Generate
	default:
		return nil, fmt.Errorf("未知的短码策略: %s", opts.Strategy)
	}
	return g, nil
}

// Start 启动后台短码补充任务
func (g *Generator) Start() {
	if cap(g.codeChan) == 0 {
		return
	}
	g.logger.Info("启动短码生成器...")
	go g.fillChannel()
	go g.monitorAndRefill()
}

// Stop 停止短码生成器，可重复调用
func (g *Generator) Stop() {
	g.stopOnce.Do(func() {
		g.logger.Info("正在停止短码生成器...")
		close(g.stopChan)
	})
}

// GetCode 获取一个短码。池中有预生成的短码时直接取用，否则现场生成。
// 随机源出错时返回错误，不会退化为可预测的值。
func (g *Generator) GetCode() (string, error) {
	select {
	case code := <-g.codeChan:
		return code, nil
	default:
	}
	return g.next()
}

// monitorAndRefill 监视通道的填充水平并根据需要进行补充
func (g *Generator) monitorAndRefill() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if len(g.codeChan) < MinFillThreshold {
				g.fillChannel()
			}
		case <-g.stopChan:
			g.logger.Info("已停止监控和补充任务。")
			return
		}
	}
}

// fillChannel 生成短码并填充通道
func (g *Generator) fillChannel() {
	g.mu.Lock()
	if g.isFilling {
		g.mu.Unlock()
		return
	}
	g.isFilling = true
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		g.isFilling = false
		g.mu.Unlock()
	}()

	g.logger.Debugf("通道中剩余 %d 个短码，开始补充...", len(g.codeChan))
	for len(g.codeChan) < cap(g.codeChan) {
		code, err := g.next()
		if err != nil {
			g.logger.Errorf("生成短码时出错: %v", err)
			return
		}
		select {
		case <-g.stopChan:
			g.logger.Info("填充任务已中断。")
			return
		case g.codeChan <- code:
		default:
			// 通道已被并发填满
			return
		}
	}
	g.logger.Debugf("短码通道已填满，现有 %d 个。", len(g.codeChan))
}

// RandomString 使用加密安全的随机数生成器生成一个给定长度的字符串
func RandomString(length int) (string, error) {
	b := make([]byte, length)
	limit := big.NewInt(int64(len(Charset)))
	for i := range b {
		num, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("读取随机源失败: %w", err)
		}
		b[i] = Charset[num.Int64()]
	}
	return string(b), nil
}
