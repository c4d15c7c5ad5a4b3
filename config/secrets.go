package config

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// ParameterGetter is the subset of the SSM client used to resolve secrets.
type ParameterGetter interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// ResolveToken fills cfg.API.Token from AWS SSM Parameter Store when running in prod
// with api.token_parameter set. An explicit token always wins.
// A nil getter builds an SSM client from the default AWS credential chain.
func ResolveToken(ctx context.Context, cfg *Config, getter ParameterGetter) error {
	if cfg.API.Token != "" || cfg.API.TokenParameter == "" || cfg.Log.Environment != "prod" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if getter == nil {
		awsCfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return fmt.Errorf("load aws config: %w", err)
		}
		getter = ssm.NewFromConfig(awsCfg)
	}

	token, err := getParameterStoreValue(ctx, getter, cfg.API.TokenParameter, true)
	if err != nil {
		return fmt.Errorf("resolve api token: %w", err)
	}
	cfg.API.Token = token
	return nil
}

func getParameterStoreValue(ctx context.Context, client ParameterGetter, parameterName string, decrypt bool) (string, error) {
	input := &ssm.GetParameterInput{
		Name:           &parameterName,
		WithDecryption: &decrypt,
	}

	result, err := client.GetParameter(ctx, input)
	if err != nil {
		return "", err
	}

	if result.Parameter == nil || result.Parameter.Value == nil {
		return "", fmt.Errorf("parameter %s has no value", parameterName)
	}

	return *result.Parameter.Value, nil
}
