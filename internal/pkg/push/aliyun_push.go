package push

import (
	"context"
	"encoding/json"
	"fmt"
	"wellness_shop/internal/pkg/config"

	"github.com/aliyun/alibaba-cloud-sdk-go/sdk/requests"
	"github.com/aliyun/alibaba-cloud-sdk-go/services/push"
)

type PushService interface {
	PushToAccount(ctx context.Context, accountID string, title, body string, extParameters map[string]string) error
}

type AliyunPushService struct {
	client *push.Client
	appKey int64
}

func NewAliyunPushService(cfg config.PushConfig) (*AliyunPushService, error) {
	if cfg.AccessKeyID == "" || cfg.AppKey == 0 {
		return nil, fmt.Errorf("push config is missing")
	}

	client, err := push.NewClientWithAccessKey(
		cfg.RegionID,
		cfg.AccessKeyID,
		cfg.AccessKeySecret,
	)
	if err != nil {
		return nil, err
	}

	return &AliyunPushService{
		client: client,
		appKey: cfg.AppKey,
	}, nil
}

func (s *AliyunPushService) PushToAccount(ctx context.Context, accountID string, title, body string, extParameters map[string]string) error {
	request := push.CreatePushRequest()
	request.AppKey = requests.NewInteger(int(s.appKey))
	request.Target = "ACCOUNT"
	request.TargetValue = accountID
	request.Title = title
	request.Body = body
	request.DeviceType = "ALL"  // iOS & Android
	request.PushType = "NOTICE" // 通知

	if len(extParameters) > 0 {
		extJSON, _ := json.Marshal(extParameters)
		request.AndroidExtParameters = string(extJSON)
		request.IOSExtParameters = string(extJSON)
	}

	// SDK 不支持 context，只在发送前检查
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.client.Push(request)
	return err
}

// NopPushService 未配置推送时使用
type NopPushService struct{}

func (NopPushService) PushToAccount(context.Context, string, string, string, map[string]string) error {
	return nil
}

// OperatorNotifier 给运营账号发提醒
type OperatorNotifier struct {
	push    PushService
	account string
}

func NewOperatorNotifier(p PushService, account string) *OperatorNotifier {
	if p == nil {
		p = NopPushService{}
	}
	return &OperatorNotifier{push: p, account: account}
}

// Notify 没有配置运营账号时直接忽略
func (n *OperatorNotifier) Notify(ctx context.Context, title, body string, ext map[string]string) error {
	if n == nil || n.account == "" {
		return nil
	}
	return n.push.PushToAccount(ctx, n.account, title, body, ext)
}
